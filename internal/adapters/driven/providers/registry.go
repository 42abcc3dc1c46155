package providers

import (
	"sync"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// Registry holds the per-provider handlers and their client credentials.
// Handlers are immutable after registration; a provider registered without
// credentials is known but unavailable, which callers treat as a normal
// state rather than a fault.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.Provider]Handler
	creds    map[domain.Provider]Credentials
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[domain.Provider]Handler),
		creds:    make(map[domain.Provider]Credentials),
	}
}

// Register adds a handler and its credentials. Empty credentials are
// allowed and leave the provider registered but unavailable.
func (r *Registry) Register(h Handler, creds Credentials) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Provider()] = h
	r.creds[h.Provider()] = creds
}

// Handler returns the handler for a provider, or nil if none is registered.
func (r *Registry) Handler(p domain.Provider) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[p]
}

// Credentials returns the client credentials for a provider. The second
// return is false when either the client ID or secret is missing.
func (r *Registry) Credentials(p domain.Provider) (Credentials, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := r.creds[p]
	if c.ClientID == "" || c.ClientSecret == "" {
		return Credentials{}, false
	}
	return c, true
}

// Configured returns the providers usable right now, in display order.
func (r *Registry) Configured() []domain.Provider {
	var out []domain.Provider
	for _, p := range domain.Providers() {
		if r.Handler(p) == nil {
			continue
		}
		if _, ok := r.Credentials(p); ok {
			out = append(out, p)
		}
	}
	return out
}
