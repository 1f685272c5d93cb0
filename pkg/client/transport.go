package client

import (
	"net/http"
	"net/url"
	"strings"
)

// TokenSource returns the current bearer token, or "" when no session exists.
// Implementations must be cheap and non-blocking: the transport reads the
// latest known value on every request and never waits for session
// initialization to finish.
type TokenSource func() string

// staticToken adapts a fixed token string to a TokenSource.
func staticToken(tok string) TokenSource {
	return func() string { return tok }
}

// assetPrefixes are request paths that never receive credentials.
var assetPrefixes = []string{"/static/", "/assets/"}

// newTransport builds the outbound middleware chain: an origin resolver that
// rewrites relative request URLs to the API origin, wrapped by a bearer
// injector. The two only touch independent parts of the request (URL vs
// header), so their order is interchangeable.
func newTransport(apiOrigin *url.URL, tokens TokenSource, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		tokens:    tokens,
		apiOrigin: apiOrigin,
		next:      &originTransport{apiOrigin: apiOrigin, next: base},
	}
}

// authTransport attaches the current bearer token to API-bound requests.
// It makes no authentication decisions: with no token the request proceeds
// unmodified and the server remains the authority on authorization.
type authTransport struct {
	tokens    TokenSource
	apiOrigin *url.URL
	next      http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := ""
	if t.tokens != nil {
		tok = t.tokens()
	}
	if tok == "" || req.Header.Get("Authorization") != "" || !targetsAPI(req.URL, t.apiOrigin) {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+tok)
	return t.next.RoundTrip(req)
}

// originTransport resolves relative request URLs against the API origin.
// Requests that already carry an absolute URL pass through untouched.
type originTransport struct {
	apiOrigin *url.URL
	next      http.RoundTripper
}

func (t *originTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != "" {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.URL.Scheme = t.apiOrigin.Scheme
	req.URL.Host = t.apiOrigin.Host
	req.Host = ""
	return t.next.RoundTrip(req)
}

// targetsAPI reports whether u addresses the application's own API: a
// relative URL, or an absolute one on the API origin, excluding static
// asset paths. Third-party URLs never receive credentials.
func targetsAPI(u *url.URL, apiOrigin *url.URL) bool {
	if u.Host != "" && u.Host != apiOrigin.Host {
		return false
	}
	for _, p := range assetPrefixes {
		if strings.HasPrefix(u.Path, p) {
			return false
		}
	}
	return true
}
