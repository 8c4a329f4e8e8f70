package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dekarrin/lens/server/dao"
	"github.com/dekarrin/lens/server/result"
)

// OpenRequest is the body of a request to open a new lens session.
type OpenRequest struct {
	Lens string `json:"lens"`
	Text string `json:"text"`
}

// ApplyRequest is the body of a request to apply an edit to a session's
// model. Edit is merged onto the session's current model field-by-field;
// a request with an empty Edit re-runs Put against the unmodified model,
// which is how an unchanged roundtrip is verified.
type ApplyRequest struct {
	Edit json.RawMessage `json:"edit"`
}

// SessionModel is the representation of a lens session returned to clients.
type SessionModel struct {
	ID      string          `json:"id"`
	Lens    string          `json:"lens"`
	Model   json.RawMessage `json:"model"`
	Created time.Time       `json:"created"`
	Updated time.Time       `json:"updated"`
}

// ApplyResponse is returned after a successful PUT; it carries the text
// rendered from the edited model plus the model as lensd now has it stored.
type ApplyResponse struct {
	Text  string          `json:"text"`
	Model json.RawMessage `json:"model"`
}

func sessionToModel(sesh dao.Session, model any) (SessionModel, error) {
	modelJSON, err := json.Marshal(model)
	if err != nil {
		return SessionModel{}, err
	}
	return SessionModel{
		ID:      sesh.ID.String(),
		Lens:    sesh.LensName,
		Model:   modelJSON,
		Created: sesh.Created,
		Updated: sesh.Updated,
	}, nil
}

// HTTPCreateSession returns a HandlerFunc that opens a new lens session by
// running Get over submitted text.
func (api API) HTTPCreateSession() http.HandlerFunc {
	return api.Endpoint(api.epCreateSession)
}

func (api API) epCreateSession(req *http.Request) result.Result {
	var body OpenRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), "%s", err.Error())
	}
	if body.Lens == "" {
		return result.BadRequest("lens must not be empty", "missing lens field")
	}

	sesh, model, err := api.Backend.Open(req.Context(), body.Lens, body.Text)
	if err != nil {
		return result.BadRequest(err.Error(), "open session: %s", err.Error())
	}

	resp, err := sessionToModel(sesh, model)
	if err != nil {
		return result.InternalServerError("encode model: %s", err.Error())
	}

	return result.Created(resp, "opened session %s against lens %q", sesh.ID, sesh.LensName)
}

// HTTPGetSession returns a HandlerFunc that retrieves a session's current
// model.
func (api API) HTTPGetSession() http.HandlerFunc {
	return api.Endpoint(api.epGetSession)
}

func (api API) epGetSession(req *http.Request) result.Result {
	id := requireIDParam(req)

	sesh, model, err := api.Backend.GetSession(req.Context(), id)
	if err != nil {
		return result.NotFound("get session %s: %s", id, err.Error())
	}

	resp, err := sessionToModel(sesh, model)
	if err != nil {
		return result.InternalServerError("encode model: %s", err.Error())
	}

	return result.OK(resp, "retrieved session %s", id)
}

// HTTPApplySession returns a HandlerFunc that merges a submitted edit onto
// a session's model and weaves it back into text via Put. Requires a valid
// bearer token.
func (api API) HTTPApplySession() http.HandlerFunc {
	return api.Endpoint(api.epApplySession)
}

func (api API) epApplySession(req *http.Request) result.Result {
	id := requireIDParam(req)

	var body ApplyRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), "%s", err.Error())
	}

	sesh, text, err := api.Backend.Apply(req.Context(), id, body.Edit)
	if err != nil {
		return result.BadRequest(err.Error(), "apply session %s: %s", id, err.Error())
	}

	resp := ApplyResponse{
		Text:  text,
		Model: sesh.ModelJSON,
	}
	return result.OK(resp, "applied edit to session %s", id)
}

// HTTPDeleteSession returns a HandlerFunc that closes a session, freeing its
// stored state. Requires a valid bearer token.
func (api API) HTTPDeleteSession() http.HandlerFunc {
	return api.Endpoint(api.epDeleteSession)
}

func (api API) epDeleteSession(req *http.Request) result.Result {
	id := requireIDParam(req)

	if _, err := api.Backend.Close(req.Context(), id); err != nil {
		return result.NotFound("close session %s: %s", id, err.Error())
	}

	return result.NoContent("closed session %s", id)
}

// HTTPListLenses returns a HandlerFunc that lists the names of lenses lensd
// has registered.
func (api API) HTTPListLenses() http.HandlerFunc {
	return api.Endpoint(api.epListLenses)
}

func (api API) epListLenses(req *http.Request) result.Result {
	return result.OK(api.Backend.Lenses(), "listed registered lenses")
}
