package sipgate

import "errors"

var (
	// ErrUnauthorized means the bearer token was missing, expired, or rejected.
	// Credentials are managed outside this package, so it is never retried here.
	ErrUnauthorized = errors.New("sipgate: unauthorized")

	// ErrUnavailable maps the provider's 503 responses.
	ErrUnavailable = errors.New("sipgate: temporarily unavailable (503)")
)
