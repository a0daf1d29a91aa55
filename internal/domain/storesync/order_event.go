package storesync

import (
	"encoding/json"
	"fmt"
)

// StorefrontEventType is the eventType of a storefront order webhook
type StorefrontEventType string

const (
	EventOrderCreated StorefrontEventType = "order.created"
	EventOrderUpdated StorefrontEventType = "order.updated"
	EventOrderDeleted StorefrontEventType = "order.deleted"
)

// IsValid reports whether t is a handled event type
func (t StorefrontEventType) IsValid() bool {
	switch t {
	case EventOrderCreated, EventOrderUpdated, EventOrderDeleted:
		return true
	}
	return false
}

// PaymentStatus is a storefront order payment status
type PaymentStatus string

const (
	PaymentAwaiting PaymentStatus = "AWAITING_PAYMENT"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// StorefrontEventData is the data object of a storefront order webhook
type StorefrontEventData struct {
	StoreID          int64         `json:"storeId"`
	OrderID          FlexibleID    `json:"orderId"`
	NewPaymentStatus PaymentStatus `json:"newPaymentStatus"`
	OldPaymentStatus PaymentStatus `json:"oldPaymentStatus"`
}

// StorefrontEvent is one storefront order webhook delivery
type StorefrontEvent struct {
	EventID   string              `json:"eventId"`
	EventType StorefrontEventType `json:"eventType"`
	StoreID   int64               `json:"storeId"`
	EntityID  FlexibleID          `json:"entityId"`
	Data      StorefrontEventData `json:"data"`
}

// ParseStorefrontEvent decodes a webhook body
func ParseStorefrontEvent(body []byte) (*StorefrontEvent, error) {
	var ev StorefrontEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &ev, nil
}

// TargetStoreID returns the storefront store the event belongs to.
// The id is read from data first and from the envelope otherwise.
func (e *StorefrontEvent) TargetStoreID() int64 {
	if e.Data.StoreID != 0 {
		return e.Data.StoreID
	}
	return e.StoreID
}

// OrderID returns the storefront order id the event refers to
func (e *StorefrontEvent) OrderID() string {
	if e.Data.OrderID != "" {
		return string(e.Data.OrderID)
	}
	return string(e.EntityID)
}

// PaymentTransition is the action an order.updated event calls for.
type PaymentTransition int

const (
	TransitionNone PaymentTransition = iota
	TransitionConfirm
	TransitionDelete
)

// Transition maps the old/new payment status pair to at most one action.
// AWAITING_PAYMENT → PAID confirms; any non-refunded → REFUNDED deletes.
func (d StorefrontEventData) Transition() PaymentTransition {
	if d.OldPaymentStatus == PaymentAwaiting && d.NewPaymentStatus == PaymentPaid {
		return TransitionConfirm
	}
	if d.OldPaymentStatus != PaymentRefunded && d.NewPaymentStatus == PaymentRefunded {
		return TransitionDelete
	}
	return TransitionNone
}

// ContactFromOrder builds the contact payload for a storefront customer
// from the order's shipping and billing persons.
func ContactFromOrder(order *StorefrontOrder) ContactInput {
	shipping := order.ShippingPerson
	if shipping == nil {
		shipping = &StorefrontPerson{}
	}
	billing := order.BillingPerson
	if billing == nil {
		billing = shipping
	}
	name := shipping.Name
	if name == "" {
		name = order.Email
	}
	return ContactInput{
		ContactName:     name,
		ShippingAddress: addressOf(shipping),
		BillingAddress:  addressOf(billing),
		ContactPersons: []ContactPerson{{
			FirstName: shipping.FirstName,
			LastName:  shipping.LastName,
			Email:     order.Email,
		}},
	}
}

func addressOf(p *StorefrontPerson) Address {
	return Address{
		Address: p.Street,
		City:    p.City,
		State:   p.StateOrProvinceCode,
		Zip:     p.PostalCode,
		Country: p.CountryCode,
	}
}
