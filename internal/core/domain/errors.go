package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrEncryptionKeyInvalid indicates the token encryption key is missing
	// or does not decode to exactly 32 bytes. Always fatal to the operation.
	ErrEncryptionKeyInvalid = errors.New("token encryption key must be 32 bytes")

	// ErrDecryptionFailed indicates a stored token blob is malformed,
	// tampered with, or was encrypted under a different key.
	ErrDecryptionFailed = errors.New("failed to decrypt token")

	// ErrUnsupportedProvider indicates a provider outside the closed set.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrProviderUnavailable indicates a supported provider with no
	// client credentials configured. This is an expected state, not a fault.
	ErrProviderUnavailable = errors.New("provider not configured")

	// ErrInvalidState indicates the authorization state failed to decode
	// or its signature did not verify.
	ErrInvalidState = errors.New("invalid authorization state")

	// ErrExpiredAuthorization indicates the authorization state is older
	// than the validity window; the user must restart the flow.
	ErrExpiredAuthorization = errors.New("authorization expired")

	// ErrTokenExchangeFailed indicates the provider rejected the
	// authorization code exchange.
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrTokenRefreshFailed indicates a refresh attempt failed; the stored
	// connection is kept so the user can reconnect.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrReauthorizationRequired indicates the access token expired and no
	// refresh token exists; the remedy is a new authorization flow.
	ErrReauthorizationRequired = errors.New("reauthorization required")

	// ErrMeetingCreationFailed indicates the provider did not return a
	// usable meeting.
	ErrMeetingCreationFailed = errors.New("meeting creation failed")

	// ErrConnectionNotFound indicates no stored connection for the
	// (user, provider) pair.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrInvalidInput indicates the input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates too many flow initiations in the window.
	ErrRateLimited = errors.New("rate limited")
)
