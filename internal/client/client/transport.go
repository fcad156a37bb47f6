package client

import (
	"net/http"

	"golang.org/x/oauth2"
)

// bearerTransport attaches the current session token, if any, as
// "Authorization: Bearer <token>". Requests go out unmodified when the
// source has no token.
type bearerTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.source == nil {
		return t.base.RoundTrip(req)
	}
	tok, err := t.source.Token()
	if err != nil || tok == nil || tok.AccessToken == "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	tok.SetAuthHeader(r)
	return t.base.RoundTrip(r)
}
