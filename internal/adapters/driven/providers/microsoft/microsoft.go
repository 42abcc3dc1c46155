package microsoft

import (
	"context"
	"fmt"
	"time"

	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers"
	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// Ensure Handler implements the interface.
var _ providers.Handler = (*Handler)(nil)

// Config holds Microsoft endpoints, overridable in tests.
type Config struct {
	AuthURL     string
	TokenURL    string
	GraphURL    string
	IdentityURL string
}

// DefaultConfig returns the common-tenant production endpoints.
func DefaultConfig() Config {
	return Config{
		AuthURL:     "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		TokenURL:    "https://login.microsoftonline.com/common/oauth2/v2.0/token",
		GraphURL:    "https://graph.microsoft.com/v1.0",
		IdentityURL: "https://graph.microsoft.com/v1.0/me",
	}
}

// Handler implements OAuth and meeting operations for Microsoft Teams
// through the Graph API.
type Handler struct {
	providers.OAuthClient
	cfg Config
}

// NewHandler creates a Microsoft handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		OAuthClient: providers.NewOAuthClient(providers.Defaults{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
			Scopes: []string{
				"offline_access",
				"OnlineMeetings.ReadWrite",
				"User.Read",
			},
		}),
		cfg: cfg,
	}
}

// Provider returns the provider this handler serves.
func (h *Handler) Provider() domain.Provider {
	return domain.ProviderMicrosoft
}

// FetchIdentity fetches the authenticated Graph user.
func (h *Handler) FetchIdentity(ctx context.Context, accessToken string) (*providers.Identity, error) {
	var user struct {
		ID                string `json:"id"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		DisplayName       string `json:"displayName"`
	}
	if err := h.GetJSON(ctx, h.cfg.IdentityURL, accessToken, &user); err != nil {
		return nil, fmt.Errorf("fetch microsoft identity: %w", err)
	}

	email := user.Mail
	if email == "" {
		email = user.UserPrincipalName
	}
	return &providers.Identity{ID: user.ID, Email: email, Name: user.DisplayName}, nil
}

// CreateMeeting schedules a Teams online meeting. Graph wants an explicit
// start and end, so the end is computed from the requested duration.
func (h *Handler) CreateMeeting(ctx context.Context, accessToken string, req domain.MeetingRequest) (*domain.Meeting, error) {
	payload := map[string]any{
		"subject":       req.Topic,
		"startDateTime": req.StartTime.UTC().Format(time.RFC3339),
		"endDateTime":   req.EndTime().UTC().Format(time.RFC3339),
	}

	var meeting struct {
		ID         string `json:"id"`
		JoinWebURL string `json:"joinWebUrl"`
	}
	if err := h.PostJSON(ctx, h.cfg.GraphURL+"/me/onlineMeetings", accessToken, payload, &meeting); err != nil {
		return nil, fmt.Errorf("create teams meeting: %w", err)
	}
	if meeting.JoinWebURL == "" {
		return nil, fmt.Errorf("graph response contained no join URL")
	}

	return &domain.Meeting{
		JoinURL:           meeting.JoinWebURL,
		ExternalMeetingID: meeting.ID,
		Provider:          domain.ProviderMicrosoft,
	}, nil
}
