package authz

import "errors"

var (
	// ErrUnauthenticated means the caller presented no valid session.
	ErrUnauthenticated = errors.New("authz: unauthenticated")

	// ErrForbidden means the caller is authenticated but the policy denies
	// the requested action on the resource.
	ErrForbidden = errors.New("authz: forbidden")
)
