package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
	"github.com/nimbus-labs/meetlink-core/internal/core/ports/driven"
)

// Ensure ConnectionStore implements the interface.
var _ driven.ConnectionStore = (*ConnectionStore)(nil)

// ConnectionStore implements driven.ConnectionStore using PostgreSQL.
// Token columns hold secret-box ciphertext only; encryption and decryption
// happen here so no caller can accidentally persist plaintext.
type ConnectionStore struct {
	db  *sql.DB
	box *SecretBox
}

// NewConnectionStore creates a PostgreSQL-backed connection store.
func NewConnectionStore(db *sql.DB, box *SecretBox) *ConnectionStore {
	return &ConnectionStore{db: db, box: box}
}

// Upsert stores a connection, overwriting any existing (user, provider) row.
// Repeating a callback therefore overwrites rather than duplicates.
func (s *ConnectionStore) Upsert(ctx context.Context, conn *domain.Connection) error {
	accessEnc, err := s.box.Encrypt(conn.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}

	var refreshEnc sql.NullString
	if conn.RefreshToken != "" {
		enc, err := s.box.Encrypt(conn.RefreshToken)
		if err != nil {
			return fmt.Errorf("encrypt refresh token: %w", err)
		}
		refreshEnc = sql.NullString{String: enc, Valid: true}
	}

	query := `
		INSERT INTO oauth_connections (
			user_id, provider, access_token_enc, refresh_token_enc,
			token_expires_at, scopes, provider_user_id, provider_email,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token_enc = EXCLUDED.access_token_enc,
			refresh_token_enc = EXCLUDED.refresh_token_enc,
			token_expires_at = EXCLUDED.token_expires_at,
			scopes = EXCLUDED.scopes,
			provider_user_id = EXCLUDED.provider_user_id,
			provider_email = EXCLUDED.provider_email,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, query,
		conn.UserID,
		conn.Provider,
		accessEnc,
		refreshEnc,
		nullTime(conn.TokenExpiresAt),
		pq.Array(conn.Scopes),
		nullString(conn.ProviderUserID),
		nullString(conn.ProviderEmail),
		conn.CreatedAt,
		conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert connection: %w", err)
	}

	return nil
}

// Get retrieves a connection with decrypted tokens.
func (s *ConnectionStore) Get(ctx context.Context, userID string, provider domain.Provider) (*domain.Connection, error) {
	query := `
		SELECT user_id, provider, access_token_enc, refresh_token_enc,
			   token_expires_at, scopes, provider_user_id, provider_email,
			   created_at, updated_at
		FROM oauth_connections
		WHERE user_id = $1 AND provider = $2
	`

	var conn domain.Connection
	var accessEnc string
	var refreshEnc, providerUserID, providerEmail sql.NullString
	var expiresAt sql.NullTime
	var scopes []string

	err := s.db.QueryRowContext(ctx, query, userID, provider).Scan(
		&conn.UserID,
		&conn.Provider,
		&accessEnc,
		&refreshEnc,
		&expiresAt,
		pq.Array(&scopes),
		&providerUserID,
		&providerEmail,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Not connected is not an error for this method
	}
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}

	conn.AccessToken, err = s.box.Decrypt(accessEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	if refreshEnc.Valid {
		conn.RefreshToken, err = s.box.Decrypt(refreshEnc.String)
		if err != nil {
			return nil, fmt.Errorf("decrypt refresh token: %w", err)
		}
	}

	if expiresAt.Valid {
		conn.TokenExpiresAt = &expiresAt.Time
	}
	conn.Scopes = scopes
	conn.ProviderUserID = providerUserID.String
	conn.ProviderEmail = providerEmail.String

	return &conn, nil
}

// List retrieves a user's connections as summaries. Token columns are not
// selected, so the status path never touches the secret box.
func (s *ConnectionStore) List(ctx context.Context, userID string) ([]*domain.ConnectionSummary, error) {
	query := `
		SELECT provider, token_expires_at, scopes, provider_user_id,
			   provider_email, created_at, updated_at
		FROM oauth_connections
		WHERE user_id = $1
		ORDER BY provider
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.ConnectionSummary
	for rows.Next() {
		var sum domain.ConnectionSummary
		var expiresAt sql.NullTime
		var providerUserID, providerEmail sql.NullString
		var scopes []string

		if err := rows.Scan(
			&sum.Provider,
			&expiresAt,
			pq.Array(&scopes),
			&providerUserID,
			&providerEmail,
			&sum.CreatedAt,
			&sum.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}

		if expiresAt.Valid {
			sum.TokenExpiresAt = &expiresAt.Time
		}
		sum.Scopes = scopes
		sum.ProviderUserID = providerUserID.String
		sum.ProviderEmail = providerEmail.String
		summaries = append(summaries, &sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}

	return summaries, nil
}

// Delete removes a connection. The provider-side grant is not revoked.
func (s *ConnectionStore) Delete(ctx context.Context, userID string, provider domain.Provider) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM oauth_connections WHERE user_id = $1 AND provider = $2`,
		userID, provider)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrConnectionNotFound
	}

	return nil
}

// UpdateTokens persists a refreshed access token. A nil refreshToken leaves
// the stored refresh token column byte-identical: providers that do not
// rotate it keep the previous one valid.
func (s *ConnectionStore) UpdateTokens(ctx context.Context, userID string, provider domain.Provider, accessToken string, refreshToken *string, expiresAt *time.Time) error {
	accessEnc, err := s.box.Encrypt(accessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}

	var refreshEnc sql.NullString
	if refreshToken != nil {
		enc, err := s.box.Encrypt(*refreshToken)
		if err != nil {
			return fmt.Errorf("encrypt refresh token: %w", err)
		}
		refreshEnc = sql.NullString{String: enc, Valid: true}
	}

	query := `
		UPDATE oauth_connections
		SET access_token_enc = $1,
			refresh_token_enc = COALESCE($2, refresh_token_enc),
			token_expires_at = $3,
			updated_at = $4
		WHERE user_id = $5 AND provider = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		accessEnc, refreshEnc, nullTime(expiresAt), time.Now(), userID, provider)
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrConnectionNotFound
	}

	return nil
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
