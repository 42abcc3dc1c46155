package driving

import (
	"context"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// OAuthService drives the connect / store / disconnect lifecycle.
type OAuthService interface {
	// Begin starts an authorization flow and returns the provider URL to
	// redirect the user's browser to.
	Begin(ctx context.Context, req BeginRequest) (*BeginResponse, error)

	// Complete handles the provider's redirect back: it validates state,
	// exchanges the code, and persists the connection. Failures are returned
	// as *CompleteError so the callback page can still route the browser to
	// the original return URL when it is known.
	Complete(ctx context.Context, req CompleteRequest) (*CompleteResult, error)

	// Disconnect deletes the stored connection. The provider-side grant is
	// not revoked; that is a documented non-goal.
	Disconnect(ctx context.Context, userID string, provider domain.Provider) error

	// Status reports, for every supported provider, whether it is configured
	// server-side, connected for this user, and expired. It never decrypts
	// tokens and never calls the provider.
	Status(ctx context.Context, userID string) ([]domain.ConnectionStatus, error)
}

// BeginRequest starts an authorization flow for an authenticated user.
type BeginRequest struct {
	UserID    string
	Provider  string
	ReturnURL string
}

// BeginResponse carries the provider authorization URL.
type BeginResponse struct {
	AuthorizationURL string          `json:"authorization_url"`
	Provider         domain.Provider `json:"provider"`
}

// CompleteRequest is the callback query from the provider.
type CompleteRequest struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CompleteResult describes a successfully persisted connection.
type CompleteResult struct {
	Provider  domain.Provider
	ReturnURL string
	Email     string
}

// CompleteError wraps a callback failure with whatever routing context was
// recovered before the failure, so the error page can funnel the browser
// back to the caller's return URL.
type CompleteError struct {
	Cause     error
	Provider  domain.Provider
	ReturnURL string
}

func (e *CompleteError) Error() string { return e.Cause.Error() }

func (e *CompleteError) Unwrap() error { return e.Cause }
