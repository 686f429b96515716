// Package cookie provides HTTP cookie management with optional HMAC
// signing, the transport identity.CookieTransport uses to hand a session's
// bearer token to a browser without inventing its own wire format.
//
// A session token is already an opaque, unguessable bearer credential, so
// it gains nothing from encryption — only from tamper detection. That is
// why this Manager only carries a plain/signed cookie pair rather than the
// encrypted-cookie and flash-message variants a general-purpose cookie
// package might also offer.
//
// # Basic usage
//
// Plain cookies work without a secret:
//
//	m := cookie.New()
//	m.Set(w, "theme", "dark", 86400)
//	value, err := m.Get(r, "theme")
//
// # Signed cookies
//
// Enable HMAC-SHA256 signing with a 32+ byte secret — this is what
// identity.NewCookieTransport configures under the hood:
//
//	m := cookie.New(
//		cookie.WithSecret(secret),
//		cookie.WithSecure(true),
//	)
//	err := m.SetSigned(w, "session", sessionToken, maxAge)
//	value, err := m.GetSigned(r, "session")
//
// GetSigned returns [ErrBadSig] if the cookie's signature does not verify,
// so a request carrying a tampered or forged session cookie is rejected
// before identity.Service.Refresh ever sees the token.
//
// # Configuration
//
// Use options to configure cookie attributes:
//   - [WithSecret]: Set the secret for signing (32+ bytes)
//   - [WithDomain]: Set the cookie domain
//   - [WithPath]: Set the cookie path (default: "/")
//   - [WithSecure]: Set the Secure flag (HTTPS only)
//   - [WithHTTPOnly]: Set the HttpOnly flag (default: true)
//   - [WithSameSite]: Set the SameSite attribute (default: Lax)
//
// # Errors
//
// The package defines these sentinel errors:
//   - [ErrNotFound]: Cookie does not exist
//   - [ErrNoSecret]: Secret required for signed operations
//   - [ErrBadSecret]: Secret must be at least 32 bytes (note: automatically ignored if provided)
//   - [ErrBadSig]: Signature verification failed (tampering detected)
package cookie
