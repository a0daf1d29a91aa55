package storesync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/auth"
	"github.com/storesync/backend/internal/infrastructure/cache"
)

type oauthFixture struct {
	stores     *MockStoreRepository
	tokens     *MockTokenRepository
	authorizer *MockInventoryAuthorizer
	states     *MockStateSigner
	cfg        OAuthServiceConfig
}

func newOAuthFixture() *oauthFixture {
	f := &oauthFixture{
		stores:     new(MockStoreRepository),
		tokens:     new(MockTokenRepository),
		authorizer: new(MockInventoryAuthorizer),
		states:     new(MockStateSigner),
	}
	f.cfg = OAuthServiceConfig{
		Stores:        f.stores,
		Tokens:        f.tokens,
		Authorizer:    f.authorizer,
		States:        f.states,
		DefaultScopes: []string{"ZohoInventory.FullAccess.all"},
	}
	return f
}

func (f *oauthFixture) service() *OAuthService {
	return NewOAuthService(f.cfg)
}

func stateClaims(orgID, id string) *auth.StateClaims {
	return &auth.StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: id},
		OrganizationID:   orgID,
	}
}

func TestOAuthService_AuthorizationURL(t *testing.T) {
	f := newOAuthFixture()
	f.stores.On("FindByInventoryOrgID", mock.Anything, "org-1").Return(newTestStore(), nil)
	f.states.On("Issue", "org-1").Return("signed-state", nil)
	f.authorizer.On("AuthCodeURL", "us", "signed-state", []string{"ZohoInventory.FullAccess.all"}).
		Return("https://accounts.zoho.com/oauth/v2/auth?state=signed-state")

	url, err := f.service().AuthorizationURL(context.Background(), "org-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.zoho.com/oauth/v2/auth?state=signed-state", url)
}

func TestOAuthService_AuthorizationURL_CustomScopes(t *testing.T) {
	f := newOAuthFixture()
	f.stores.On("FindByInventoryOrgID", mock.Anything, "org-1").Return(newTestStore(), nil)
	f.states.On("Issue", "org-1").Return("s", nil)
	f.authorizer.On("AuthCodeURL", "us", "s", []string{"a", "b"}).Return("u")

	_, err := f.service().AuthorizationURL(context.Background(), "org-1", []string{"a", "b"})
	require.NoError(t, err)
	f.authorizer.AssertExpectations(t)
}

func TestOAuthService_AuthorizationURL_Errors(t *testing.T) {
	f := newOAuthFixture()
	_, err := f.service().AuthorizationURL(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, storesync.ErrOrganizationMissing)

	f.stores.On("FindByInventoryOrgID", mock.Anything, "org-x").Return(nil, storesync.ErrStoreNotFound)
	_, err = f.service().AuthorizationURL(context.Background(), "org-x", nil)
	assert.ErrorIs(t, err, storesync.ErrStoreNotFound)
	f.states.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestOAuthService_Callback_CreatesToken(t *testing.T) {
	f := newOAuthFixture()
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	f.states.On("Verify", "state-1").Return(stateClaims("org-1", "jti-1"), nil)
	f.stores.On("FindByInventoryOrgID", mock.Anything, "org-1").Return(newTestStore(), nil)
	f.authorizer.On("Exchange", mock.Anything, "us", "code-1").
		Return(&storesync.TokenGrant{AccessToken: "a-1", RefreshToken: "r-1", ExpiresAt: expiry}, nil)
	f.tokens.On("FindByStoreID", mock.Anything, int64(7)).Return(nil, storesync.ErrTokenNotFound)
	f.tokens.On("Upsert", mock.Anything, mock.MatchedBy(func(tok *storesync.OAuthToken) bool {
		return tok.StoreID == 7 && tok.AccessToken == "a-1" && tok.RefreshToken == "r-1" && tok.ExpiresAt == expiry.Unix()
	})).Return(nil).Once()
	f.stores.On("Save", mock.Anything, mock.MatchedBy(func(s *storesync.Store) bool {
		return s.Location == "us"
	})).Return(nil).Once()

	result, err := f.service().Callback(context.Background(), CallbackRequest{Code: "code-1", Location: "US", State: "state-1"})

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.StoreID)
	assert.Equal(t, "us", result.Location)
	f.tokens.AssertExpectations(t)
	f.stores.AssertExpectations(t)
}

func TestOAuthService_Callback_PatchesExistingToken(t *testing.T) {
	f := newOAuthFixture()
	existing := freshToken()
	f.states.On("Verify", "state-1").Return(stateClaims("org-1", ""), nil)
	f.stores.On("FindByInventoryOrgID", mock.Anything, "org-1").Return(newTestStore(), nil)
	f.authorizer.On("Exchange", mock.Anything, "eu", "code-1").
		Return(&storesync.TokenGrant{AccessToken: "a-2", ExpiresAt: time.Now().Add(time.Hour)}, nil)
	f.tokens.On("FindByStoreID", mock.Anything, int64(7)).Return(existing, nil)
	f.tokens.On("Upsert", mock.Anything, mock.MatchedBy(func(tok *storesync.OAuthToken) bool {
		return tok.ID == 1 && tok.AccessToken == "a-2" && tok.RefreshToken == "refresh-1"
	})).Return(nil).Once()

	// no location in the redirect keeps the store's current one
	_, err := f.service().Callback(context.Background(), CallbackRequest{Code: "code-1", State: "state-1"})

	require.NoError(t, err)
	f.tokens.AssertExpectations(t)
	f.stores.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOAuthService_Callback_Rejections(t *testing.T) {
	t.Run("denied by user", func(t *testing.T) {
		_, err := newOAuthFixture().service().Callback(context.Background(), CallbackRequest{Error: "access_denied"})
		assert.ErrorIs(t, err, storesync.ErrAuthorizationDenied)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := newOAuthFixture().service().Callback(context.Background(), CallbackRequest{State: "s"})
		assert.ErrorIs(t, err, storesync.ErrAuthorizationCode)
	})

	t.Run("bad state", func(t *testing.T) {
		f := newOAuthFixture()
		f.states.On("Verify", "forged").Return(nil, auth.ErrInvalidState)

		_, err := f.service().Callback(context.Background(), CallbackRequest{Code: "c", State: "forged"})
		assert.ErrorIs(t, err, storesync.ErrInvalidOAuthState)
		f.authorizer.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("exchange failure", func(t *testing.T) {
		f := newOAuthFixture()
		f.states.On("Verify", "s").Return(stateClaims("org-1", ""), nil)
		f.stores.On("FindByInventoryOrgID", mock.Anything, "org-1").Return(newTestStore(), nil)
		f.authorizer.On("Exchange", mock.Anything, "eu", "c").Return(nil, errors.Join(storesync.ErrRemoteCall, errors.New("invalid_code")))

		_, err := f.service().Callback(context.Background(), CallbackRequest{Code: "c", State: "s"})
		assert.ErrorIs(t, err, storesync.ErrRemoteCall)
		f.tokens.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestOAuthService_Callback_StateIsSingleUse(t *testing.T) {
	f := newOAuthFixture()
	used := cache.NewInMemoryIdempotencyStore()
	defer used.Close()
	f.cfg.UsedStates = used

	f.states.On("Verify", "s").Return(stateClaims("org-1", "jti-1"), nil)
	f.stores.On("FindByInventoryOrgID", mock.Anything, "org-1").Return(newTestStore(), nil)
	f.authorizer.On("Exchange", mock.Anything, "eu", "c").
		Return(&storesync.TokenGrant{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
	f.tokens.On("FindByStoreID", mock.Anything, int64(7)).Return(nil, storesync.ErrTokenNotFound)
	f.tokens.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	svc := f.service()
	_, err := svc.Callback(context.Background(), CallbackRequest{Code: "c", State: "s"})
	require.NoError(t, err)

	_, err = svc.Callback(context.Background(), CallbackRequest{Code: "c", State: "s"})
	assert.ErrorIs(t, err, storesync.ErrInvalidOAuthState)
	f.authorizer.AssertNumberOfCalls(t, "Exchange", 1)
}
