package api

import (
	"net/http"
	"time"

	"github.com/dekarrin/lens/server/result"
	"github.com/dekarrin/lens/server/serr"
	"github.com/dekarrin/lens/server/token"
)

// tokenTTL is how long an issued bearer token remains valid.
const tokenTTL = 24 * time.Hour

// AuthRequest is the body of a request for a new bearer token.
type AuthRequest struct {
	Secret string `json:"secret"`
}

// AuthModel is the body of a response granting a bearer token.
type AuthModel struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HTTPCreateToken returns a HandlerFunc that exchanges the server's shared
// secret for a bearer token.
func (api API) HTTPCreateToken() http.HandlerFunc {
	return api.Endpoint(api.epCreateToken)
}

func (api API) epCreateToken(req *http.Request) result.Result {
	var body AuthRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), "%s", err.Error())
	}

	if err := token.CompareSecret(api.SecretHash, body.Secret); err != nil {
		return result.Unauthorized("", serr.New("incorrect secret", serr.ErrBadToken).Error())
	}

	tok, err := token.Generate(api.Secret, tokenTTL)
	if err != nil {
		return result.InternalServerError("could not generate token: %s", err.Error())
	}

	resp := AuthModel{
		Token:     tok,
		ExpiresAt: time.Now().Add(tokenTTL),
	}
	return result.Created(resp, "issued bearer token")
}
