package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers"
	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
	"github.com/nimbus-labs/meetlink-core/internal/core/ports/driven"
	"github.com/nimbus-labs/meetlink-core/internal/core/ports/driving"
)

// Ensure meetingService implements MeetingService
var _ driving.MeetingService = (*meetingService)(nil)

// MeetingServiceConfig holds configuration for the meeting service.
type MeetingServiceConfig struct {
	// Registry resolves provider handlers and credentials.
	Registry *providers.Registry

	// Connections is the encrypted connection store.
	Connections driven.ConnectionStore

	// Logger receives provider error bodies; they never reach clients.
	Logger *slog.Logger
}

// meetingService implements the MeetingService interface.
type meetingService struct {
	registry    *providers.Registry
	connections driven.ConnectionStore
	logger      *slog.Logger
	now         func() time.Time
}

// NewMeetingService creates a new meeting service.
func NewMeetingService(cfg MeetingServiceConfig) driving.MeetingService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &meetingService{
		registry:    cfg.Registry,
		connections: cfg.Connections,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateMeeting provisions a meeting through the user's stored connection,
// refreshing the access token first when it has expired.
func (s *meetingService) CreateMeeting(ctx context.Context, userID string, provider string, req domain.MeetingRequest) (*domain.Meeting, error) {
	p, err := domain.ParseProvider(provider)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	handler := s.registry.Handler(p)
	if handler == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, p)
	}

	conn, err := s.connections.Get(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	if conn == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrConnectionNotFound, p)
	}

	accessToken := conn.AccessToken
	if conn.Expired(s.now()) {
		accessToken, err = s.refresh(ctx, handler, conn)
		if err != nil {
			return nil, err
		}
	}

	meeting, err := handler.CreateMeeting(ctx, accessToken, req)
	if err != nil {
		// Raw provider bodies can carry account details; log only.
		s.logger.Error("meeting creation failed",
			"provider", p,
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("%w: %s rejected the request", domain.ErrMeetingCreationFailed, p.DisplayName())
	}

	return meeting, nil
}

// refresh exchanges the refresh token and persists the re-encrypted result.
// A missing expiry never reaches here: such tokens are treated as valid.
//
// Two requests racing a near-expiry token may both refresh; the last
// writer's token becomes authoritative. That race is deliberately not
// serialized.
func (s *meetingService) refresh(ctx context.Context, handler providers.Handler, conn *domain.Connection) (string, error) {
	if conn.RefreshToken == "" {
		return "", fmt.Errorf("%w: %s token expired with no refresh token", domain.ErrReauthorizationRequired, conn.Provider)
	}

	creds, ok := s.registry.Credentials(conn.Provider)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, conn.Provider)
	}

	token, err := handler.Refresh(ctx, creds, conn.RefreshToken)
	if err != nil {
		// The stale connection row is kept; the user can still reconnect.
		s.logger.Error("token refresh failed",
			"provider", conn.Provider,
			"user_id", conn.UserID,
			"error", err)
		return "", fmt.Errorf("%w: %s", domain.ErrTokenRefreshFailed, conn.Provider)
	}

	// Only persist a new refresh token if the provider rotated it.
	var newRefresh *string
	if token.RefreshToken != "" {
		newRefresh = &token.RefreshToken
	}
	var expiresAt *time.Time
	if token.ExpiresIn > 0 {
		expiry := s.now().Add(time.Duration(token.ExpiresIn) * time.Second)
		expiresAt = &expiry
	}

	if err := s.connections.UpdateTokens(ctx, conn.UserID, conn.Provider, token.AccessToken, newRefresh, expiresAt); err != nil {
		// The refreshed token is usable locally; the next use refreshes again.
		s.logger.Error("persist refreshed tokens failed",
			"provider", conn.Provider,
			"user_id", conn.UserID,
			"error", err)
	}

	return token.AccessToken, nil
}
