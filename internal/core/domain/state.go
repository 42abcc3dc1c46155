package domain

import "time"

// StateValidity is how long an authorization state stays acceptable.
// A state older than this must be rejected; the user restarts the flow.
const StateValidity = 10 * time.Minute

// AuthorizationState is the ephemeral payload round-tripped through the
// provider's state parameter. It is never persisted: the encoded blob is
// the only copy, and it is consumed exactly once by the callback.
type AuthorizationState struct {
	UserID    string
	Provider  Provider
	ReturnURL string
	IssuedAt  time.Time
}

// Expired reports whether the state is outside the validity window.
// Age of exactly StateValidity is still accepted.
func (s *AuthorizationState) Expired(now time.Time) bool {
	return now.Sub(s.IssuedAt) > StateValidity
}
