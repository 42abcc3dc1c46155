package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers"
	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
	"github.com/nimbus-labs/meetlink-core/internal/core/ports/driven"
	"github.com/nimbus-labs/meetlink-core/internal/core/ports/driving"
)

// Ensure oauthService implements OAuthService
var _ driving.OAuthService = (*oauthService)(nil)

// OAuthServiceConfig holds configuration for the OAuth service.
type OAuthServiceConfig struct {
	// Registry resolves provider handlers and credentials.
	Registry *providers.Registry

	// Connections persists encrypted connections.
	Connections driven.ConnectionStore

	// States signs and verifies the state parameter.
	States *StateCodec

	// Secrets probes whether tokens can be encrypted for storage. A nil
	// probe skips the check.
	Secrets driven.Secrets

	// BaseURL is the application base URL the OAuth callback lives under.
	// Example: "https://app.example.com" or "http://localhost:8080"
	BaseURL string

	// DefaultReturnURL is used when a begin request carries no return URL.
	DefaultReturnURL string

	// Logger receives provider error bodies; they never reach clients.
	Logger *slog.Logger
}

// oauthService implements the OAuthService interface.
type oauthService struct {
	registry         *providers.Registry
	connections      driven.ConnectionStore
	states           *StateCodec
	secrets          driven.Secrets
	baseURL          string
	defaultReturnURL string
	logger           *slog.Logger
	now              func() time.Time
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(cfg OAuthServiceConfig) driving.OAuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &oauthService{
		registry:         cfg.Registry,
		connections:      cfg.Connections,
		states:           cfg.States,
		secrets:          cfg.Secrets,
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		defaultReturnURL: cfg.DefaultReturnURL,
		logger:           logger,
		now:              time.Now,
	}
}

// callbackURL is server-derived, never taken from caller input, so the
// provider's redirect-validation trust cannot be abused as an open redirect.
func (s *oauthService) callbackURL() string {
	return s.baseURL + "/api/v1/oauth/callback"
}

// Begin starts an authorization flow and returns the provider URL.
func (s *oauthService) Begin(ctx context.Context, req driving.BeginRequest) (*driving.BeginResponse, error) {
	p, err := domain.ParseProvider(req.Provider)
	if err != nil {
		return nil, err
	}

	handler := s.registry.Handler(p)
	if handler == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, p)
	}
	creds, ok := s.registry.Credentials(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, p)
	}

	// A broken encryption key would otherwise surface only at the final
	// save in Complete, after the user already sat through provider
	// consent. Refuse up front.
	if s.secrets != nil && !s.secrets.Configured() {
		return nil, fmt.Errorf("%w: connections cannot be stored", domain.ErrEncryptionKeyInvalid)
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = s.defaultReturnURL
	}

	state, err := s.states.Encode(domain.AuthorizationState{
		UserID:    req.UserID,
		Provider:  p,
		ReturnURL: returnURL,
		IssuedAt:  s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}

	return &driving.BeginResponse{
		AuthorizationURL: handler.BuildAuthURL(creds.ClientID, s.callbackURL(), state),
		Provider:         p,
	}, nil
}

// Complete handles the provider's redirect back. Steps run in a fixed
// order: state validation, code exchange, encryption+persistence, with the
// identity lookup as the only non-fatal step.
func (s *oauthService) Complete(ctx context.Context, req driving.CompleteRequest) (*driving.CompleteResult, error) {
	st, err := s.states.Decode(req.State)
	if err != nil {
		ce := &driving.CompleteError{Cause: err}
		if st != nil {
			// Expired states still decode; keep the routing context.
			ce.Provider = st.Provider
			ce.ReturnURL = st.ReturnURL
		}
		return nil, ce
	}

	fail := func(cause error) (*driving.CompleteResult, error) {
		return nil, &driving.CompleteError{
			Cause:     cause,
			Provider:  st.Provider,
			ReturnURL: st.ReturnURL,
		}
	}

	if req.Error != "" {
		s.logger.Warn("provider denied authorization",
			"provider", st.Provider,
			"error", req.Error,
			"description", req.ErrorDescription)
		return fail(fmt.Errorf("%w: authorization denied", domain.ErrTokenExchangeFailed))
	}

	handler := s.registry.Handler(st.Provider)
	if handler == nil {
		return fail(fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, st.Provider))
	}
	creds, ok := s.registry.Credentials(st.Provider)
	if !ok {
		return fail(fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, st.Provider))
	}

	token, err := handler.ExchangeCode(ctx, creds, req.Code, s.callbackURL())
	if err != nil {
		// The provider's raw error text goes to logs only.
		s.logger.Error("token exchange failed",
			"provider", st.Provider,
			"user_id", st.UserID,
			"error", err)
		return fail(domain.ErrTokenExchangeFailed)
	}

	conn := &domain.Connection{
		UserID:       st.UserID,
		Provider:     st.Provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scopes:       splitScopes(token.Scope),
	}
	if token.ExpiresIn > 0 {
		expiry := s.now().Add(time.Duration(token.ExpiresIn) * time.Second)
		conn.TokenExpiresAt = &expiry
	}

	// Best-effort identity; the connection is valid without a display name.
	identity, err := handler.FetchIdentity(ctx, token.AccessToken)
	if err != nil {
		s.logger.Warn("identity lookup failed",
			"provider", st.Provider,
			"user_id", st.UserID,
			"error", err)
	} else {
		conn.ProviderUserID = identity.ID
		conn.ProviderEmail = identity.Email
	}

	if err := s.connections.Upsert(ctx, conn); err != nil {
		s.logger.Error("save connection failed",
			"provider", st.Provider,
			"user_id", st.UserID,
			"error", err)
		return fail(fmt.Errorf("save connection: %w", err))
	}

	return &driving.CompleteResult{
		Provider:  st.Provider,
		ReturnURL: st.ReturnURL,
		Email:     conn.ProviderEmail,
	}, nil
}

// Disconnect deletes the stored connection without revoking the
// provider-side grant.
func (s *oauthService) Disconnect(ctx context.Context, userID string, provider domain.Provider) error {
	return s.connections.Delete(ctx, userID, provider)
}

// Status reports per-provider connection state. Local and side-effect
// free: no decryption, no refresh, no provider call.
func (s *oauthService) Status(ctx context.Context, userID string) ([]domain.ConnectionStatus, error) {
	summaries, err := s.connections.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	byProvider := make(map[domain.Provider]*domain.ConnectionSummary, len(summaries))
	for _, sum := range summaries {
		byProvider[sum.Provider] = sum
	}

	configured := make(map[domain.Provider]bool)
	for _, p := range s.registry.Configured() {
		configured[p] = true
	}

	now := s.now()
	statuses := make([]domain.ConnectionStatus, 0, len(domain.Providers()))
	for _, p := range domain.Providers() {
		status := domain.ConnectionStatus{
			Provider:     p,
			IsConfigured: configured[p],
		}
		if sum, ok := byProvider[p]; ok {
			status.IsConnected = true
			status.IsExpired = sum.TokenExpiresAt != nil && now.After(*sum.TokenExpiresAt)
			status.Email = sum.ProviderEmail
			connectedAt := sum.CreatedAt
			status.ConnectedAt = &connectedAt
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// splitScopes splits a space- or comma-separated scope string.
func splitScopes(scope string) []string {
	return strings.FieldsFunc(scope, func(r rune) bool {
		return r == ' ' || r == ','
	})
}
