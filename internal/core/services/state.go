package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// stateClaims is the wire shape of the authorization state blob.
type stateClaims struct {
	UserID    string `json:"uid"`
	Provider  string `json:"prv"`
	ReturnURL string `json:"ret"`
	jwt.RegisteredClaims
}

// StateCodec signs and verifies the state parameter round-tripped through
// the provider. Signing (HS256) means a forged state cannot bind a
// different user's connection; freshness is still enforced by the
// issued-at window, and replay within the window is harmless because the
// callback upsert is idempotent.
type StateCodec struct {
	secret []byte
	now    func() time.Time
}

// NewStateCodec creates a codec over the given signing secret.
func NewStateCodec(secret string) *StateCodec {
	return &StateCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Encode serializes and signs an authorization state.
func (c *StateCodec) Encode(st domain.AuthorizationState) (string, error) {
	claims := stateClaims{
		UserID:    st.UserID,
		Provider:  string(st.Provider),
		ReturnURL: st.ReturnURL,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(st.IssuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies and deserializes a state blob.
//
// A blob that fails to parse or verify yields domain.ErrInvalidState; one
// that parsed but is older than the validity window yields
// domain.ErrExpiredAuthorization together with the decoded state, so the
// caller keeps the routing context (the errors stay distinct for
// observability).
func (c *StateCodec) Decode(token string) (*domain.AuthorizationState, error) {
	parsed, err := jwt.ParseWithClaims(token, &stateClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidState, err)
	}

	claims, ok := parsed.Claims.(*stateClaims)
	if !ok || !parsed.Valid || claims.IssuedAt == nil {
		return nil, domain.ErrInvalidState
	}

	provider, err := domain.ParseProvider(claims.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidState, err)
	}

	st := &domain.AuthorizationState{
		UserID:    claims.UserID,
		Provider:  provider,
		ReturnURL: claims.ReturnURL,
		IssuedAt:  claims.IssuedAt.Time,
	}
	if st.Expired(c.now()) {
		return st, domain.ErrExpiredAuthorization
	}
	return st, nil
}
