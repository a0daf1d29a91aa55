package storesync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/auth"
)

// consentLocation is the accounts server that serves the consent page.
// It redirects back with the organization's real location.
const consentLocation = "us"

// StateSigner issues and verifies the OAuth state parameter.
// auth.StateService implements it.
type StateSigner interface {
	Issue(organizationID string) (string, error)
	Verify(state string) (*auth.StateClaims, error)
}

// CallbackRequest carries the query of the OAuth redirect
type CallbackRequest struct {
	Code     string
	Location string
	State    string
	Error    string
}

// CallbackResult describes the stored credentials
type CallbackResult struct {
	StoreID        int64
	OrganizationID string
	Location       string
	ExpiresAt      time.Time
}

// OAuthService onboards a store's inventory organization: it builds the
// consent URL and stores the tokens returned to the callback.
type OAuthService struct {
	stores        storesync.StoreRepository
	tokens        storesync.TokenRepository
	authorizer    storesync.InventoryAuthorizer
	states        StateSigner
	usedStates    shared.IdempotencyStore
	stateTTL      time.Duration
	defaultScopes []string
	logger        *zap.Logger
}

// OAuthServiceConfig holds the service dependencies. UsedStates is optional
// and makes each state single-use.
type OAuthServiceConfig struct {
	Stores        storesync.StoreRepository
	Tokens        storesync.TokenRepository
	Authorizer    storesync.InventoryAuthorizer
	States        StateSigner
	UsedStates    shared.IdempotencyStore
	StateTTL      time.Duration
	DefaultScopes []string
	Logger        *zap.Logger
}

// NewOAuthService creates a new OAuthService
func NewOAuthService(cfg OAuthServiceConfig) *OAuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = auth.DefaultStateTTL
	}
	return &OAuthService{
		stores:        cfg.Stores,
		tokens:        cfg.Tokens,
		authorizer:    cfg.Authorizer,
		states:        cfg.States,
		usedStates:    cfg.UsedStates,
		stateTTL:      ttl,
		defaultScopes: cfg.DefaultScopes,
		logger:        logger,
	}
}

// AuthorizationURL returns the consent page URL for a known organization
func (s *OAuthService) AuthorizationURL(ctx context.Context, organizationID string, scopes []string) (string, error) {
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return "", storesync.ErrOrganizationMissing
	}
	if _, err := s.stores.FindByInventoryOrgID(ctx, organizationID); err != nil {
		return "", err
	}

	state, err := s.states.Issue(organizationID)
	if err != nil {
		return "", fmt.Errorf("issue oauth state: %w", err)
	}
	if len(scopes) == 0 {
		scopes = s.defaultScopes
	}
	return s.authorizer.AuthCodeURL(consentLocation, state, scopes), nil
}

// Callback exchanges the authorization code and stores the token pair for
// the organization named in the state. The store's location is updated to
// the data center the platform redirected from.
func (s *OAuthService) Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	if req.Error != "" {
		return nil, fmt.Errorf("%w: %s", storesync.ErrAuthorizationDenied, req.Error)
	}
	if req.Code == "" {
		return nil, storesync.ErrAuthorizationCode
	}

	claims, err := s.states.Verify(req.State)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storesync.ErrInvalidOAuthState, err)
	}
	if err := s.consumeState(ctx, claims); err != nil {
		return nil, err
	}

	store, err := s.stores.FindByInventoryOrgID(ctx, claims.OrganizationID)
	if err != nil {
		return nil, err
	}

	location := strings.ToLower(strings.TrimSpace(req.Location))
	if location == "" {
		location = store.RegionLocation()
	}

	grant, err := s.authorizer.Exchange(ctx, location, req.Code)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.FindByStoreID(ctx, store.ID)
	if err != nil {
		if !errors.Is(err, storesync.ErrTokenNotFound) {
			return nil, err
		}
		token = &storesync.OAuthToken{StoreID: store.ID}
	}
	token.Apply(grant.AccessToken, grant.RefreshToken, grant.ExpiresAt)
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return nil, err
	}

	if store.Location != location {
		store.Location = location
		if err := s.stores.Save(ctx, store); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Inventory organization authorized",
		zap.Int64("store_id", store.ID),
		zap.String("organization_id", store.InventoryOrgID),
		zap.String("location", location))

	return &CallbackResult{
		StoreID:        store.ID,
		OrganizationID: store.InventoryOrgID,
		Location:       location,
		ExpiresAt:      grant.ExpiresAt,
	}, nil
}

func (s *OAuthService) consumeState(ctx context.Context, claims *auth.StateClaims) error {
	if s.usedStates == nil || claims.ID == "" {
		return nil
	}
	fresh, err := s.usedStates.MarkProcessed(ctx, "oauth-state:"+claims.ID, s.stateTTL)
	if err != nil {
		s.logger.Warn("Idempotency store unavailable, accepting oauth state", zap.Error(err))
		return nil
	}
	if !fresh {
		return fmt.Errorf("%w: state already used", storesync.ErrInvalidOAuthState)
	}
	return nil
}
