package providers

import (
	"context"
	"net/url"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// Credentials are the OAuth app client credentials for one provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Token is a provider token-endpoint response.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
}

// Identity is the best-effort "who am I" result, used only for display.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Handler provides OAuth and meeting operations for a specific provider.
// Each provider (Zoom, Google, Microsoft) has its own implementation; adding
// a provider means adding a Handler, not touching call sites.
type Handler interface {
	// Provider returns the provider this handler serves.
	Provider() domain.Provider

	// Defaults returns the provider's endpoints, scopes, and quirks.
	Defaults() Defaults

	// BuildAuthURL constructs the authorization URL carrying the opaque
	// state blob. The redirect URI is server-controlled.
	BuildAuthURL(clientID, redirectURI, state string) string

	// ExchangeCode exchanges an authorization code for tokens using the
	// provider's required client-auth style.
	ExchangeCode(ctx context.Context, creds Credentials, code, redirectURI string) (*Token, error)

	// Refresh exchanges a refresh token for a new access token. The
	// response may or may not rotate the refresh token.
	Refresh(ctx context.Context, creds Credentials, refreshToken string) (*Token, error)

	// FetchIdentity fetches the account's display identity. Callers treat
	// failure here as non-fatal.
	FetchIdentity(ctx context.Context, accessToken string) (*Identity, error)

	// CreateMeeting schedules a meeting and returns the normalized result.
	// A response without a retrievable join URL is an error.
	CreateMeeting(ctx context.Context, accessToken string, req domain.MeetingRequest) (*domain.Meeting, error)
}

// Defaults contains a provider's OAuth configuration.
type Defaults struct {
	// AuthURL is the authorization endpoint.
	AuthURL string

	// TokenURL is the token exchange endpoint.
	TokenURL string

	// Scopes to request during authorization.
	Scopes []string

	// ExtraAuthParams are provider-specific authorization parameters
	// (e.g. Google's offline access + forced consent).
	ExtraAuthParams url.Values

	// BasicAuthTokenRequest marks providers whose token endpoint rejects
	// body-only client credentials and requires an HTTP Basic header too.
	// Modeled as data so call sites carry no provider conditionals.
	BasicAuthTokenRequest bool
}
