package driven

import (
	"context"
	"time"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// ConnectionStore persists OAuth connections with encrypted tokens.
// Every write is a full-row upsert or an explicit column update; there is
// no read-modify-write of partial state.
type ConnectionStore interface {
	// Upsert stores a connection keyed on (user, provider), overwriting any
	// existing row. Tokens are encrypted before storage.
	Upsert(ctx context.Context, conn *domain.Connection) error

	// Get retrieves a connection with decrypted tokens.
	// Returns nil, nil when no connection exists.
	Get(ctx context.Context, userID string, provider domain.Provider) (*domain.Connection, error)

	// List retrieves all of a user's connections as summaries.
	// No token columns are read, so nothing is decrypted.
	List(ctx context.Context, userID string) ([]*domain.ConnectionSummary, error)

	// Delete removes a connection.
	// Returns domain.ErrConnectionNotFound if no row existed.
	Delete(ctx context.Context, userID string, provider domain.Provider) error

	// UpdateTokens persists a refreshed access token and expiry.
	// A nil refreshToken leaves the stored refresh token untouched, since
	// not every provider rotates it.
	UpdateTokens(ctx context.Context, userID string, provider domain.Provider, accessToken string, refreshToken *string, expiresAt *time.Time) error
}
