package zoom

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers"
	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// Ensure Handler implements the interface.
var _ providers.Handler = (*Handler)(nil)

// Config holds Zoom endpoints, overridable in tests.
type Config struct {
	AuthURL     string
	TokenURL    string
	APIBaseURL  string
	IdentityURL string
}

// DefaultConfig returns Zoom's production endpoints.
func DefaultConfig() Config {
	return Config{
		AuthURL:     "https://zoom.us/oauth/authorize",
		TokenURL:    "https://zoom.us/oauth/token",
		APIBaseURL:  "https://api.zoom.us/v2",
		IdentityURL: "https://api.zoom.us/v2/users/me",
	}
}

// Handler implements OAuth and meeting operations for Zoom.
// Zoom's token endpoint rejects body-only client credentials, so the
// handler is flagged for HTTP Basic authentication on token requests.
type Handler struct {
	providers.OAuthClient
	cfg Config
}

// NewHandler creates a Zoom handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		OAuthClient: providers.NewOAuthClient(providers.Defaults{
			AuthURL:               cfg.AuthURL,
			TokenURL:              cfg.TokenURL,
			Scopes:                []string{"meeting:write", "user:read"},
			BasicAuthTokenRequest: true,
		}),
		cfg: cfg,
	}
}

// Provider returns the provider this handler serves.
func (h *Handler) Provider() domain.Provider {
	return domain.ProviderZoom
}

// FetchIdentity fetches the authenticated Zoom user.
func (h *Handler) FetchIdentity(ctx context.Context, accessToken string) (*providers.Identity, error) {
	var user struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := h.GetJSON(ctx, h.cfg.IdentityURL, accessToken, &user); err != nil {
		return nil, fmt.Errorf("fetch zoom identity: %w", err)
	}
	return &providers.Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.FirstName + " " + user.LastName,
	}, nil
}

// CreateMeeting schedules a Zoom meeting. Zoom takes a start time plus a
// duration in minutes; type 2 is a scheduled (non-recurring) meeting.
func (h *Handler) CreateMeeting(ctx context.Context, accessToken string, req domain.MeetingRequest) (*domain.Meeting, error) {
	payload := map[string]any{
		"topic":      req.Topic,
		"type":       2,
		"start_time": req.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		"duration":   req.DurationMinutes,
	}
	if req.Timezone != "" {
		payload["timezone"] = req.Timezone
	}

	var meeting struct {
		ID      int64  `json:"id"`
		JoinURL string `json:"join_url"`
	}
	if err := h.PostJSON(ctx, h.cfg.APIBaseURL+"/users/me/meetings", accessToken, payload, &meeting); err != nil {
		return nil, fmt.Errorf("create zoom meeting: %w", err)
	}
	if meeting.JoinURL == "" {
		return nil, fmt.Errorf("zoom response contained no join URL")
	}

	return &domain.Meeting{
		JoinURL:           meeting.JoinURL,
		ExternalMeetingID: strconv.FormatInt(meeting.ID, 10),
		Provider:          domain.ProviderZoom,
	}, nil
}
