package ecwid

import (
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/storesync"
)

type errorResponse struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
}

type updateResponse struct {
	UpdateCount int `json:"updateCount"`
}

type inventoryAdjustment struct {
	QuantityDelta int64 `json:"quantityDelta"`
}

type personJSON struct {
	Name                string `json:"name"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Street              string `json:"street"`
	City                string `json:"city"`
	StateOrProvinceCode string `json:"stateOrProvinceCode"`
	PostalCode          string `json:"postalCode"`
	CountryCode         string `json:"countryCode"`
}

type orderItemJSON struct {
	ProductID int64           `json:"productId"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// orderJSON accepts order ids as strings or numbers.
type orderJSON struct {
	ID             storesync.FlexibleID `json:"id"`
	Email          string               `json:"email"`
	Items          []orderItemJSON      `json:"items"`
	ShippingPerson *personJSON          `json:"shippingPerson"`
	BillingPerson  *personJSON          `json:"billingPerson"`
}

func (o orderJSON) toDomain() *storesync.StorefrontOrder {
	items := make([]storesync.StorefrontOrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, storesync.StorefrontOrderItem{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return &storesync.StorefrontOrder{
		ID:             o.ID.String(),
		Email:          o.Email,
		Items:          items,
		ShippingPerson: o.ShippingPerson.toDomain(),
		BillingPerson:  o.BillingPerson.toDomain(),
	}
}

func (p *personJSON) toDomain() *storesync.StorefrontPerson {
	if p == nil {
		return nil
	}
	person := storesync.StorefrontPerson(*p)
	return &person
}
