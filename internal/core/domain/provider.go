package domain

import "fmt"

// Provider identifies a supported meeting provider.
type Provider string

const (
	ProviderZoom      Provider = "zoom"
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
)

// Providers returns the closed set of supported providers in display order.
func Providers() []Provider {
	return []Provider{ProviderZoom, ProviderGoogle, ProviderMicrosoft}
}

// ParseProvider validates a provider name from external input.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderZoom, ProviderGoogle, ProviderMicrosoft:
		return Provider(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
	}
}

// DisplayName returns a human-readable name for a provider.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderZoom:
		return "Zoom"
	case ProviderGoogle:
		return "Google Meet"
	case ProviderMicrosoft:
		return "Microsoft Teams"
	default:
		return string(p)
	}
}
