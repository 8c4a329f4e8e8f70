package api

import (
	"net/http"

	"github.com/dekarrin/lens/internal/registry"
	"github.com/dekarrin/lens/internal/version"
	"github.com/dekarrin/lens/server/middle"
	"github.com/dekarrin/lens/server/result"
)

// InfoModel describes lensd itself: its version and the lenses it currently
// has registered.
type InfoModel struct {
	Version string   `json:"version"`
	Lenses  []string `json:"lenses"`
}

// HTTPGetInfo returns a HandlerFunc that retrieves information on the API and
// server.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// a value denoting whether the client making the request carried a valid
// bearer token.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return api.Endpoint(api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	loggedIn := req.Context().Value(middle.AuthLoggedIn).(bool)

	resp := InfoModel{
		Version: version.Current,
		Lenses:  registry.Names(),
	}

	callerStr := "unauthed client"
	if loggedIn {
		callerStr = "authed client"
	}
	return result.OK(resp, "%s got API info", callerStr)
}
