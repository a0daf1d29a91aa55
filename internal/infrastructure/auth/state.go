// Package auth signs and verifies the OAuth state parameter that carries an
// inventory organization through the consent redirect.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storesync/backend/internal/infrastructure/config"
)

const stateIssuer = "storesync"

// DefaultStateTTL is used when the configured TTL is not positive.
const DefaultStateTTL = 10 * time.Minute

var (
	ErrInvalidState = errors.New("invalid oauth state")
	ErrExpiredState = errors.New("oauth state has expired")
	ErrMissingOrgID = errors.New("missing organization_id in oauth state")
)

// StateClaims are the claims of a state token
type StateClaims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"organization_id"`
}

// StateService issues and verifies HS256-signed state tokens
type StateService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateService creates a state service from the inventory settings
func NewStateService(cfg config.InventoryConfig) *StateService {
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateService{
		secret: []byte(cfg.StateSecret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed state for organizationID
func (s *StateService) Issue(organizationID string) (string, error) {
	if organizationID == "" {
		return "", ErrMissingOrgID
	}
	now := s.now()
	claims := &StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    stateIssuer,
			Subject:   organizationID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrganizationID: organizationID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry of state and returns the claims
func (s *StateService) Verify(state string) (*StateClaims, error) {
	token, err := jwt.ParseWithClaims(state, &StateClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidState
		}
		return s.secret, nil
	},
		jwt.WithIssuer(stateIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredState
		}
		return nil, ErrInvalidState
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidState
	}
	if claims.OrganizationID == "" {
		return nil, ErrMissingOrgID
	}
	return claims, nil
}
