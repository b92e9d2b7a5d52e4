package auth

import "context"

// Authenticator verifies the operator credentials sent with a request.
// This abstraction allows swapping the check (bcrypt hash, external IdP, etc.)
// without changing the middleware.
type Authenticator interface {
	// Enabled reports whether credentials are required at all.
	Enabled() bool

	// Authenticate returns nil if the username and password are valid.
	Authenticate(ctx context.Context, username, password string) error
}
