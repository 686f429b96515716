package vault

import "errors"

var (
	// ErrEmptyPassword is returned by Hash when given an empty plaintext.
	ErrEmptyPassword = errors.New("vault: password must not be empty")

	// ErrInvalidHash is returned when an encoded hash is malformed, uses an
	// unsupported algorithm, or carries unreasonable cost parameters.
	ErrInvalidHash = errors.New("vault: invalid or unsupported hash")
)
