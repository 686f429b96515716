package identity

import (
	"net/http"

	"github.com/taskforge/core/pkg/cookie"
)

// SessionCookieName is the name of the cookie carrying a session's bearer
// token when a caller transports sessions over HTTP instead of an
// Authorization header.
const SessionCookieName = "taskforge_session"

// CookieTransport encodes and decodes Session tokens as signed HTTP cookies,
// so an HTTP collaborator can hand a session token to identity.Service.Refresh
// or identity.Service.Revoke without inventing its own cookie format.
type CookieTransport struct {
	manager *cookie.Manager
}

// NewCookieTransport builds a CookieTransport. secret must be at least 32
// bytes; it is used to HMAC-sign (not encrypt) the session token, since the
// token itself is an opaque, already-unguessable bearer credential and
// gains nothing from encryption, only from tamper detection.
func NewCookieTransport(secret string, opts ...cookie.Option) *CookieTransport {
	allOpts := append([]cookie.Option{cookie.WithSecret(secret), cookie.WithSecure(true)}, opts...)
	return &CookieTransport{manager: cookie.New(allOpts...)}
}

// Token extracts the session token from the request's signed cookie.
// Returns cookie.ErrNotFound if the cookie is absent and cookie.ErrBadSig if
// the signature does not verify.
func (t *CookieTransport) Token(r *http.Request) (string, error) {
	return t.manager.GetSigned(r, SessionCookieName)
}

// Set writes s's token as a signed cookie that expires alongside the
// session itself.
func (t *CookieTransport) Set(w http.ResponseWriter, s Session) error {
	maxAge := int(s.ExpiresAt.Sub(s.IssuedAt).Seconds())
	return t.manager.SetSigned(w, SessionCookieName, s.Token, maxAge)
}

// Clear removes the session cookie, e.g. on logout.
func (t *CookieTransport) Clear(w http.ResponseWriter) {
	t.manager.Delete(w, SessionCookieName)
}
