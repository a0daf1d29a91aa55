package storesync

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Inventory platform port
// ---------------------------------------------------------------------------

// Address is a postal address on an inventory contact
type Address struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// ContactPerson is a person attached to an inventory contact
type ContactPerson struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// ContactInput is the payload used to create a customer contact
type ContactInput struct {
	ContactName     string          `json:"contact_name"`
	ShippingAddress Address         `json:"shipping_address"`
	BillingAddress  Address         `json:"billing_address"`
	ContactPersons  []ContactPerson `json:"contact_persons"`
}

// Contact is a customer on the inventory platform
type Contact struct {
	ID   string
	Name string
}

// SalesOrderLine is one line of a sales order to create
type SalesOrderLine struct {
	ItemID   string          `json:"item_id"`
	Rate     decimal.Decimal `json:"rate"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SalesOrderInput is the payload used to create a sales order
type SalesOrderInput struct {
	CustomerID string           `json:"customer_id"`
	LineItems  []SalesOrderLine `json:"line_items"`
	Notes      string           `json:"notes,omitempty"`
}

// SalesOrder is a created sales order
type SalesOrder struct {
	ID     string
	Number string
}

// InventoryGateway is the set of inventory-platform operations the bridge
// uses. Implementations are bound to one organization and access token.
type InventoryGateway interface {
	ListContactsByEmail(ctx context.Context, email string) ([]Contact, error)
	CreateContact(ctx context.Context, input ContactInput) (*Contact, error)
	CreateSalesOrder(ctx context.Context, input SalesOrderInput) (*SalesOrder, error)
	ConfirmSalesOrder(ctx context.Context, salesOrderID string) error
	DeleteSalesOrder(ctx context.Context, salesOrderID string) error
}

// InventoryConnector builds gateways for a store and its access token.
type InventoryConnector interface {
	Connect(store *Store, accessToken string) InventoryGateway
}

// TokenGrant is the outcome of an authorization-code or refresh-token grant.
// RefreshToken is empty when the grant did not issue a new one.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// InventoryAuthorizer runs the inventory platform's OAuth flows against the
// accounts server of a data-center location.
type InventoryAuthorizer interface {
	AuthCodeURL(location, state string, scopes []string) string
	Exchange(ctx context.Context, location, code string) (*TokenGrant, error)
	Refresh(ctx context.Context, location, refreshToken string) (*TokenGrant, error)
}

// ---------------------------------------------------------------------------
// Storefront platform port
// ---------------------------------------------------------------------------

// StorefrontPerson is a shipping or billing person on a storefront order
type StorefrontPerson struct {
	Name                string `json:"name"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Street              string `json:"street"`
	City                string `json:"city"`
	StateOrProvinceCode string `json:"stateOrProvinceCode"`
	PostalCode          string `json:"postalCode"`
	CountryCode         string `json:"countryCode"`
}

// StorefrontOrderItem is one line of a storefront order
type StorefrontOrderItem struct {
	ProductID int64           `json:"productId"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// StorefrontOrder is the order detail fetched from the storefront
type StorefrontOrder struct {
	ID             string                `json:"id"`
	Email          string                `json:"email"`
	Items          []StorefrontOrderItem `json:"items"`
	ShippingPerson *StorefrontPerson     `json:"shippingPerson"`
	BillingPerson  *StorefrontPerson     `json:"billingPerson"`
}

// OrderDetailFields are the response fields requested for order creation.
var OrderDetailFields = []string{"email", "items", "shippingPerson", "billingPerson"}

// StorefrontGateway is the set of storefront operations the bridge uses.
// Implementations are bound to one storefront store.
type StorefrontGateway interface {
	GetOrder(ctx context.Context, orderID string, fields []string) (*StorefrontOrder, error)
	AdjustProductStock(ctx context.Context, productID int64, quantityDelta int64) error
}

// StorefrontConnector builds gateways for a store.
type StorefrontConnector interface {
	Connect(store *Store) StorefrontGateway
}
