package domain

import "time"

// Connection binds one user to one provider's OAuth tokens.
// At most one connection exists per (UserID, Provider); the storage layer
// enforces this with an upsert on the pair, never read-then-write.
//
// AccessToken and RefreshToken are plaintext only while the struct lives in
// process memory; the store encrypts them before they touch a row and
// decrypts on read.
type Connection struct {
	UserID   string
	Provider Provider

	AccessToken  string
	RefreshToken string

	// TokenExpiresAt is absent when the provider did not report a lifetime;
	// such tokens are treated as non-expiring.
	TokenExpiresAt *time.Time

	// Scopes as granted by the provider, which may be narrower than requested.
	Scopes []string

	// Best-effort external identity, display-only.
	ProviderUserID string
	ProviderEmail  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the access token is past its expiry.
// A connection without a recorded expiry never reports expired.
func (c *Connection) Expired(now time.Time) bool {
	if c.TokenExpiresAt == nil {
		return false
	}
	return now.After(*c.TokenExpiresAt)
}

// ConnectionSummary is a connection row without token material.
// Status reads use summaries so no decryption ever happens on that path.
type ConnectionSummary struct {
	Provider       Provider
	TokenExpiresAt *time.Time
	Scopes         []string
	ProviderUserID string
	ProviderEmail  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ConnectionStatus is the per-provider view returned by the status reporter.
type ConnectionStatus struct {
	Provider     Provider   `json:"provider"`
	IsConfigured bool       `json:"is_configured"`
	IsConnected  bool       `json:"is_connected"`
	IsExpired    bool       `json:"is_expired"`
	Email        string     `json:"email,omitempty"`
	ConnectedAt  *time.Time `json:"connected_at,omitempty"`
}
