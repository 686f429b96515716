package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core/pkg/cookie"
	"github.com/taskforge/core/pkg/identity"
)

func TestCookieTransport_SetThenToken_RoundTrips(t *testing.T) {
	transport := identity.NewCookieTransport("a-session-cookie-secret-32-bytes!")

	session := identity.Session{
		Token:       "tok_abc123",
		PrincipalID: uuid.New(),
		IssuedAt:    time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	rec := httptest.NewRecorder()
	require.NoError(t, transport.Set(rec, session))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	got, err := transport.Token(req)
	require.NoError(t, err)
	assert.Equal(t, session.Token, got)
}

func TestCookieTransport_Token_MissingCookie(t *testing.T) {
	transport := identity.NewCookieTransport("a-session-cookie-secret-32-bytes!")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := transport.Token(req)
	assert.ErrorIs(t, err, cookie.ErrNotFound)
}

func TestCookieTransport_Token_TamperedSignatureRejected(t *testing.T) {
	transport := identity.NewCookieTransport("a-session-cookie-secret-32-bytes!")

	session := identity.Session{
		Token:       "tok_abc123",
		PrincipalID: uuid.New(),
		IssuedAt:    time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	rec := httptest.NewRecorder()
	require.NoError(t, transport.Set(rec, session))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookies[0].Value += "tampered"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	_, err := transport.Token(req)
	assert.ErrorIs(t, err, cookie.ErrBadSig)
}

func TestCookieTransport_Clear_RemovesCookie(t *testing.T) {
	transport := identity.NewCookieTransport("a-session-cookie-secret-32-bytes!")

	rec := httptest.NewRecorder()
	transport.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
