package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers"
	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// memStore is an in-memory ConnectionStore for service tests.
type memStore struct {
	mu          sync.Mutex
	conns       map[string]*domain.Connection
	upsertCalls int
	updateCalls []updateCall

	upsertErr error
	updateErr error
}

type updateCall struct {
	accessToken  string
	refreshToken *string
	expiresAt    *time.Time
}

func newMemStore() *memStore {
	return &memStore{conns: make(map[string]*domain.Connection)}
}

func storeKey(userID string, provider domain.Provider) string {
	return userID + "/" + string(provider)
}

func (s *memStore) Upsert(ctx context.Context, conn *domain.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	cp := *conn
	s.conns[storeKey(conn.UserID, conn.Provider)] = &cp
	return nil
}

func (s *memStore) Get(ctx context.Context, userID string, provider domain.Provider) (*domain.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.conns[storeKey(userID, provider)]
	if !ok {
		return nil, nil
	}
	cp := *conn
	return &cp, nil
}

func (s *memStore) List(ctx context.Context, userID string) ([]*domain.ConnectionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ConnectionSummary
	for _, conn := range s.conns {
		if conn.UserID != userID {
			continue
		}
		out = append(out, &domain.ConnectionSummary{
			Provider:       conn.Provider,
			TokenExpiresAt: conn.TokenExpiresAt,
			Scopes:         conn.Scopes,
			ProviderUserID: conn.ProviderUserID,
			ProviderEmail:  conn.ProviderEmail,
			CreatedAt:      conn.CreatedAt,
			UpdatedAt:      conn.UpdatedAt,
		})
	}
	return out, nil
}

func (s *memStore) Delete(ctx context.Context, userID string, provider domain.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(userID, provider)
	if _, ok := s.conns[key]; !ok {
		return domain.ErrConnectionNotFound
	}
	delete(s.conns, key)
	return nil
}

func (s *memStore) UpdateTokens(ctx context.Context, userID string, provider domain.Provider, accessToken string, refreshToken *string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls = append(s.updateCalls, updateCall{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    expiresAt,
	})
	if s.updateErr != nil {
		return s.updateErr
	}
	conn, ok := s.conns[storeKey(userID, provider)]
	if !ok {
		return domain.ErrConnectionNotFound
	}
	conn.AccessToken = accessToken
	if refreshToken != nil {
		conn.RefreshToken = *refreshToken
	}
	conn.TokenExpiresAt = expiresAt
	return nil
}

// stubHandler is a scriptable provider handler.
type stubHandler struct {
	provider domain.Provider

	exchangeToken *providers.Token
	exchangeErr   error
	exchangeCalls int

	refreshToken  *providers.Token
	refreshErr    error
	refreshCalls  int
	refreshQueue  []*providers.Token
	identity      *providers.Identity
	identityErr   error
	meeting       *domain.Meeting
	meetingErr    error
	meetingCalls  int
	meetingTokens []string
}

func (h *stubHandler) Provider() domain.Provider { return h.provider }

func (h *stubHandler) Defaults() providers.Defaults { return providers.Defaults{} }

func (h *stubHandler) BuildAuthURL(clientID, redirectURI, state string) string {
	return fmt.Sprintf("https://auth.example.com/authorize?client_id=%s&redirect_uri=%s&state=%s", clientID, redirectURI, state)
}

func (h *stubHandler) ExchangeCode(ctx context.Context, creds providers.Credentials, code, redirectURI string) (*providers.Token, error) {
	h.exchangeCalls++
	return h.exchangeToken, h.exchangeErr
}

func (h *stubHandler) Refresh(ctx context.Context, creds providers.Credentials, refreshToken string) (*providers.Token, error) {
	h.refreshCalls++
	if len(h.refreshQueue) > 0 {
		tok := h.refreshQueue[0]
		h.refreshQueue = h.refreshQueue[1:]
		return tok, nil
	}
	return h.refreshToken, h.refreshErr
}

func (h *stubHandler) FetchIdentity(ctx context.Context, accessToken string) (*providers.Identity, error) {
	if h.identity == nil && h.identityErr == nil {
		return &providers.Identity{}, nil
	}
	return h.identity, h.identityErr
}

func (h *stubHandler) CreateMeeting(ctx context.Context, accessToken string, req domain.MeetingRequest) (*domain.Meeting, error) {
	h.meetingCalls++
	h.meetingTokens = append(h.meetingTokens, accessToken)
	return h.meeting, h.meetingErr
}

// stubSecrets is a fixed-answer encryption probe.
type stubSecrets struct {
	ok bool
}

func (s stubSecrets) Configured() bool { return s.ok }

func testRegistry(h *stubHandler) *providers.Registry {
	reg := providers.NewRegistry()
	reg.Register(h, providers.Credentials{ClientID: "client-id", ClientSecret: "client-secret"})
	return reg
}
