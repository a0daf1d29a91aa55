package storesync

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/auth"
)

// =============================================================================
// Repository mocks
// =============================================================================

type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindByInventoryOrgID(ctx context.Context, inventoryOrgID string) (*storesync.Store, error) {
	args := m.Called(ctx, inventoryOrgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByStorefrontStoreID(ctx context.Context, storefrontStoreID int64) (*storesync.Store, error) {
	args := m.Called(ctx, storefrontStoreID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.Store), args.Error(1)
}

func (m *MockStoreRepository) Save(ctx context.Context, store *storesync.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByInventoryItemID(ctx context.Context, storeID int64, inventoryItemID string) (*storesync.Item, error) {
	args := m.Called(ctx, storeID, inventoryItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.Item), args.Error(1)
}

func (m *MockItemRepository) FindByStorefrontItemID(ctx context.Context, storeID int64, storefrontItemID int64) (*storesync.Item, error) {
	args := m.Called(ctx, storeID, storefrontItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *storesync.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByStorefrontOrderID(ctx context.Context, storeID int64, storefrontOrderID string) (*storesync.Order, error) {
	args := m.Called(ctx, storeID, storefrontOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *storesync.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) FindByStoreID(ctx context.Context, storeID int64) (*storesync.OAuthToken, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.OAuthToken), args.Error(1)
}

func (m *MockTokenRepository) Upsert(ctx context.Context, token *storesync.OAuthToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, audit *storesync.WebhookAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockAuditRepository) AddItem(ctx context.Context, item *storesync.WebhookAuditItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockAuditRepository) FindByID(ctx context.Context, id int64) (*storesync.WebhookAudit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.WebhookAudit), args.Error(1)
}

// =============================================================================
// Gateway mocks
// =============================================================================

type MockInventoryGateway struct {
	mock.Mock
}

func (m *MockInventoryGateway) ListContactsByEmail(ctx context.Context, email string) ([]storesync.Contact, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storesync.Contact), args.Error(1)
}

func (m *MockInventoryGateway) CreateContact(ctx context.Context, input storesync.ContactInput) (*storesync.Contact, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.Contact), args.Error(1)
}

func (m *MockInventoryGateway) CreateSalesOrder(ctx context.Context, input storesync.SalesOrderInput) (*storesync.SalesOrder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.SalesOrder), args.Error(1)
}

func (m *MockInventoryGateway) ConfirmSalesOrder(ctx context.Context, salesOrderID string) error {
	args := m.Called(ctx, salesOrderID)
	return args.Error(0)
}

func (m *MockInventoryGateway) DeleteSalesOrder(ctx context.Context, salesOrderID string) error {
	args := m.Called(ctx, salesOrderID)
	return args.Error(0)
}

// staticInventoryConnector hands out one gateway and remembers the token
type staticInventoryConnector struct {
	gateway   storesync.InventoryGateway
	lastToken string
}

func (c *staticInventoryConnector) Connect(_ *storesync.Store, accessToken string) storesync.InventoryGateway {
	c.lastToken = accessToken
	return c.gateway
}

type MockStorefrontGateway struct {
	mock.Mock
}

func (m *MockStorefrontGateway) GetOrder(ctx context.Context, orderID string, fields []string) (*storesync.StorefrontOrder, error) {
	args := m.Called(ctx, orderID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.StorefrontOrder), args.Error(1)
}

func (m *MockStorefrontGateway) AdjustProductStock(ctx context.Context, productID int64, quantityDelta int64) error {
	args := m.Called(ctx, productID, quantityDelta)
	return args.Error(0)
}

type staticStorefrontConnector struct {
	gateway storesync.StorefrontGateway
}

func (c *staticStorefrontConnector) Connect(_ *storesync.Store) storesync.StorefrontGateway {
	return c.gateway
}

type MockInventoryAuthorizer struct {
	mock.Mock
}

func (m *MockInventoryAuthorizer) AuthCodeURL(location, state string, scopes []string) string {
	args := m.Called(location, state, scopes)
	return args.String(0)
}

func (m *MockInventoryAuthorizer) Exchange(ctx context.Context, location, code string) (*storesync.TokenGrant, error) {
	args := m.Called(ctx, location, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.TokenGrant), args.Error(1)
}

func (m *MockInventoryAuthorizer) Refresh(ctx context.Context, location, refreshToken string) (*storesync.TokenGrant, error) {
	args := m.Called(ctx, location, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.TokenGrant), args.Error(1)
}

// =============================================================================
// Application port mocks
// =============================================================================

type MockAccessTokenProvider struct {
	mock.Mock
}

func (m *MockAccessTokenProvider) AccessToken(ctx context.Context, store *storesync.Store) (*storesync.OAuthToken, error) {
	args := m.Called(ctx, store)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storesync.OAuthToken), args.Error(1)
}

type MockPayloadArchive struct {
	mock.Mock
}

func (m *MockPayloadArchive) Archive(ctx context.Context, payload ArchivedPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

type MockStateSigner struct {
	mock.Mock
}

func (m *MockStateSigner) Issue(organizationID string) (string, error) {
	args := m.Called(organizationID)
	return args.String(0), args.Error(1)
}

func (m *MockStateSigner) Verify(state string) (*auth.StateClaims, error) {
	args := m.Called(state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.StateClaims), args.Error(1)
}

// recordingMetrics counts the calls it receives
type recordingMetrics struct {
	webhooks    map[string]int
	adjustments map[string]int
	orderEvents map[string]int
	refreshes   []error
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		webhooks:    map[string]int{},
		adjustments: map[string]int{},
		orderEvents: map[string]int{},
	}
}

func (r *recordingMetrics) RecordWebhook(_ context.Context, category, outcome string) {
	r.webhooks[category+"/"+outcome]++
}

func (r *recordingMetrics) RecordAdjustment(_ context.Context, category, outcome string, n int) {
	r.adjustments[category+"/"+outcome] += n
}

func (r *recordingMetrics) RecordOrderEvent(_ context.Context, eventType, action string) {
	r.orderEvents[eventType+"/"+action]++
}

func (r *recordingMetrics) RecordTokenRefresh(_ context.Context, err error) {
	r.refreshes = append(r.refreshes, err)
}

// =============================================================================
// Fixtures
// =============================================================================

func newTestStore() *storesync.Store {
	store := storesync.NewStore("org-1", 1003)
	store.ID = 7
	return store
}

func newTestItem(id int64, inventoryItemID string, storefrontItemID int64) *storesync.Item {
	item := &storesync.Item{
		StoreID:          7,
		InventoryItemID:  inventoryItemID,
		StorefrontItemID: storefrontItemID,
	}
	item.ID = id
	return item
}

func freshToken() *storesync.OAuthToken {
	return &storesync.OAuthToken{
		ID:           1,
		StoreID:      7,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	}
}
