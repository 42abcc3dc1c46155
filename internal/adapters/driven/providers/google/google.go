package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers"
	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// Ensure Handler implements the interface.
var _ providers.Handler = (*Handler)(nil)

// Config holds Google endpoints, overridable in tests.
type Config struct {
	AuthURL     string
	TokenURL    string
	CalendarURL string
	IdentityURL string
}

// DefaultConfig returns Google's production endpoints.
func DefaultConfig() Config {
	return Config{
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:    "https://oauth2.googleapis.com/token",
		CalendarURL: "https://www.googleapis.com/calendar/v3",
		IdentityURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// Handler implements OAuth and meeting operations for Google.
// Authorization always requests offline access and forces the consent
// screen so a refresh token is issued even for previously-consented users.
type Handler struct {
	providers.OAuthClient
	cfg Config
}

// NewHandler creates a Google handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		OAuthClient: providers.NewOAuthClient(providers.Defaults{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/calendar.events",
				"openid",
				"email",
			},
			ExtraAuthParams: url.Values{
				"access_type": {"offline"},
				"prompt":      {"consent"},
			},
		}),
		cfg: cfg,
	}
}

// Provider returns the provider this handler serves.
func (h *Handler) Provider() domain.Provider {
	return domain.ProviderGoogle
}

// FetchIdentity fetches the authenticated Google account.
func (h *Handler) FetchIdentity(ctx context.Context, accessToken string) (*providers.Identity, error) {
	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := h.GetJSON(ctx, h.cfg.IdentityURL, accessToken, &user); err != nil {
		return nil, fmt.Errorf("fetch google identity: %w", err)
	}
	return &providers.Identity{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

// CreateMeeting schedules a Google Meet call. Google has no standalone
// meeting API: the conference is a createRequest attached to a calendar
// event, and conferenceDataVersion=1 must be set or the sub-request is
// silently ignored.
func (h *Handler) CreateMeeting(ctx context.Context, accessToken string, req domain.MeetingRequest) (*domain.Meeting, error) {
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	requestID, err := conferenceRequestID()
	if err != nil {
		return nil, fmt.Errorf("generate conference request id: %w", err)
	}

	payload := map[string]any{
		"summary": req.Topic,
		"start": map[string]string{
			"dateTime": req.StartTime.Format("2006-01-02T15:04:05-07:00"),
			"timeZone": timezone,
		},
		"end": map[string]string{
			"dateTime": req.EndTime().Format("2006-01-02T15:04:05-07:00"),
			"timeZone": timezone,
		},
		"conferenceData": map[string]any{
			"createRequest": map[string]any{
				"requestId": requestID,
				"conferenceSolutionKey": map[string]string{
					"type": "hangoutsMeet",
				},
			},
		},
	}

	var event struct {
		ID             string `json:"id"`
		HangoutLink    string `json:"hangoutLink"`
		ConferenceData struct {
			EntryPoints []struct {
				EntryPointType string `json:"entryPointType"`
				URI            string `json:"uri"`
			} `json:"entryPoints"`
		} `json:"conferenceData"`
	}

	eventsURL := h.cfg.CalendarURL + "/calendars/primary/events?conferenceDataVersion=1"
	if err := h.PostJSON(ctx, eventsURL, accessToken, payload, &event); err != nil {
		return nil, fmt.Errorf("create google meeting: %w", err)
	}

	joinURL := event.HangoutLink
	if joinURL == "" {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				joinURL = ep.URI
				break
			}
		}
	}
	if joinURL == "" {
		return nil, fmt.Errorf("google event contained no join URL")
	}

	return &domain.Meeting{
		JoinURL:           joinURL,
		ExternalMeetingID: event.ID,
		Provider:          domain.ProviderGoogle,
	}, nil
}

func conferenceRequestID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
