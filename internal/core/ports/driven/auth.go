package driven

import "context"

// TokenVerifier authenticates API callers. The account system itself is
// external; this subsystem only needs the caller's user ID.
type TokenVerifier interface {
	// Verify validates a bearer token and returns the user ID it carries.
	Verify(token string) (string, error)
}

// RateLimiter bounds how often a keyed action may run inside a window.
// A nil limiter in the HTTP layer disables limiting.
type RateLimiter interface {
	// Allow reports whether one more action is permitted for the key.
	Allow(ctx context.Context, key string) (bool, error)
}
