// Package vault implements password hashing and opaque bearer token
// generation for the identity core.
package vault

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Version = 19

// Params controls the Argon2id cost parameters. The zero value is not
// usable; callers should start from DefaultParams.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns the cost parameters used for new hashes. These
// follow the OWASP baseline for Argon2id (19 MiB memory, 2 iterations is
// too low for a server-side vault, so we use a heavier profile suited to
// a background worker process rather than a request path).
func DefaultParams() Params {
	return Params{
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hash returns a PHC-formatted Argon2id hash of plaintext:
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
func Hash(plaintext string, p Params) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("vault: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version, p.MemoryKiB, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches the PHC-encoded Argon2id hash.
// It returns (false, ErrInvalidHash) when encoded is malformed rather than
// propagating a parse error, so callers can treat any false/err as "does
// not authenticate" without inspecting the reason.
func Verify(plaintext, encoded string) (bool, error) {
	params, salt, expected, err := decode(encoded)
	if err != nil {
		return false, err
	}

	// Refuse to run hashes whose cost parameters are wildly above what we
	// would ever produce ourselves; bounds an attacker-supplied hash from
	// forcing pathological memory/CPU use during verification.
	limits := DefaultParams()
	if params.MemoryKiB > limits.MemoryKiB*4 || params.Iterations > limits.Iterations*4 {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey([]byte(plaintext), salt, params.Iterations, params.MemoryKiB, params.Parallelism, uint32(len(expected)))

	if subtle.ConstantTimeCompare(key, expected) == 1 {
		return true, nil
	}
	return false, nil
}

func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2Version) {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var mem, iter uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &par); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if mem == 0 || iter == 0 || par == 0 {
		return Params{}, nil, nil, ErrInvalidHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	hash, err := b64.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}

	return Params{
		MemoryKiB:   mem,
		Iterations:  iter,
		Parallelism: par,
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(hash)),
	}, salt, hash, nil
}

// tokenBytes is the amount of entropy behind each opaque session token.
// 32 bytes (256 bits) base64url-encodes to 43 characters with no padding.
const tokenBytes = 32

// NewToken returns a URL-safe, high-entropy opaque bearer token suitable
// for use as a session identifier. The token carries no information about
// the principal or session it belongs to.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("vault: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
