package storesync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// LineItem is the canonical form of one stock movement taken from a webhook.
type LineItem struct {
	InventoryItemID string
	// Quantity is the signed delta to apply on the storefront.
	Quantity int64
	// WarehouseID is empty when the payload carries none.
	WarehouseID string
}

// PayloadNormalizer extracts canonical line items from one category's
// payload shape. A payload without the category's section yields an empty
// slice and no error.
type PayloadNormalizer interface {
	Category() WebhookCategory
	Normalize(payload []byte) ([]LineItem, error)
}

// SalesFilterMode selects which sales orders are synchronized.
//
// The two modes are conflicting readings of the same customer id. Exclude,
// the default, treats it as the storefront's own customer: those orders
// already moved storefront stock, so they are rejected. Include treats it as
// a marker: only orders carrying it are synchronized. Include reproduces the
// legacy bridge, which accepted marked orders only, so deployments migrated
// from it must set include explicitly.
type SalesFilterMode string

const (
	// SalesFilterExclude drops orders attributed to the counterpart customer.
	// Those orders were placed on the storefront, which already moved stock.
	SalesFilterExclude SalesFilterMode = "exclude"
	// SalesFilterInclude keeps only orders attributed to the counterpart customer.
	SalesFilterInclude SalesFilterMode = "include"
)

// IsValid reports whether m is a known mode
func (m SalesFilterMode) IsValid() bool {
	return m == SalesFilterExclude || m == SalesFilterInclude
}

// SalesFilter configures the sales order variant.
type SalesFilter struct {
	// CounterpartCustomerID is the inventory-platform customer that stands for
	// the storefront channel. Empty disables filtering.
	CounterpartCustomerID string
	Mode                  SalesFilterMode
}

// Accepts reports whether a sales order for customerID passes the filter
func (f SalesFilter) Accepts(customerID string) bool {
	if f.CounterpartCustomerID == "" {
		return true
	}
	matches := customerID == f.CounterpartCustomerID
	if f.Mode == SalesFilterInclude {
		return matches
	}
	return !matches
}

// NormalizerRegistry is the static category → normalizer table.
type NormalizerRegistry struct {
	normalizers map[WebhookCategory]PayloadNormalizer
}

// NewNormalizerRegistry builds the table with one variant per category
func NewNormalizerRegistry(salesFilter SalesFilter) *NormalizerRegistry {
	r := &NormalizerRegistry{normalizers: make(map[WebhookCategory]PayloadNormalizer)}
	for _, n := range []PayloadNormalizer{
		InventoryAdjustmentNormalizer{},
		SalesOrderNormalizer{Filter: salesFilter},
		PurchaseOrderNormalizer{},
		TransferOrderNormalizer{},
	} {
		r.normalizers[n.Category()] = n
	}
	return r
}

// For returns the normalizer registered for category
func (r *NormalizerRegistry) For(category WebhookCategory) (PayloadNormalizer, error) {
	n, ok := r.normalizers[category]
	if !ok {
		return nil, ErrUnknownCategory
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Variants
// ---------------------------------------------------------------------------

// InventoryAdjustmentNormalizer reads inventory_adjustment.line_items.
// Only quantity adjustments move stock; value adjustments are rejected.
type InventoryAdjustmentNormalizer struct{}

func (InventoryAdjustmentNormalizer) Category() WebhookCategory {
	return CategoryInventoryAdjustment
}

func (InventoryAdjustmentNormalizer) Normalize(payload []byte) ([]LineItem, error) {
	var body struct {
		Section *struct {
			AdjustmentType string        `json:"adjustment_type"`
			LineItems      []rawLineItem `json:"line_items"`
		} `json:"inventory_adjustment"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return nil, err
	}
	if body.Section == nil {
		return []LineItem{}, nil
	}
	if body.Section.AdjustmentType != "quantity" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAdjustmentType, body.Section.AdjustmentType)
	}
	return collect(body.Section.LineItems, func(li rawLineItem) decimal.Decimal {
		return li.QuantityAdjusted
	})
}

// SalesOrderNormalizer reads salesorder.line_items. Sold quantities leave
// stock, so the sign is inverted.
type SalesOrderNormalizer struct {
	Filter SalesFilter
}

func (SalesOrderNormalizer) Category() WebhookCategory {
	return CategorySales
}

func (n SalesOrderNormalizer) Normalize(payload []byte) ([]LineItem, error) {
	var body struct {
		Section *struct {
			CustomerID FlexibleID    `json:"customer_id"`
			LineItems  []rawLineItem `json:"line_items"`
		} `json:"salesorder"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return nil, err
	}
	if body.Section == nil {
		return []LineItem{}, nil
	}
	if !n.Filter.Accepts(string(body.Section.CustomerID)) {
		return nil, fmt.Errorf("%w: customer %s", ErrSalesOrderFiltered, body.Section.CustomerID)
	}
	return collect(body.Section.LineItems, func(li rawLineItem) decimal.Decimal {
		return li.Quantity.Neg()
	})
}

// PurchaseOrderNormalizer reads purchaseorder.line_items. Received goods
// add stock.
type PurchaseOrderNormalizer struct{}

func (PurchaseOrderNormalizer) Category() WebhookCategory {
	return CategoryPurchase
}

func (PurchaseOrderNormalizer) Normalize(payload []byte) ([]LineItem, error) {
	var body struct {
		Section *struct {
			LineItems []rawLineItem `json:"line_items"`
		} `json:"purchaseorder"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return nil, err
	}
	if body.Section == nil {
		return []LineItem{}, nil
	}
	return collect(body.Section.LineItems, func(li rawLineItem) decimal.Decimal {
		return li.Quantity
	})
}

// TransferOrderNormalizer reads transfer_order.line_items. Transferred
// quantities leave the tracked warehouse.
type TransferOrderNormalizer struct{}

func (TransferOrderNormalizer) Category() WebhookCategory {
	return CategoryTransfer
}

func (TransferOrderNormalizer) Normalize(payload []byte) ([]LineItem, error) {
	var body struct {
		Section *struct {
			LineItems []rawLineItem `json:"line_items"`
		} `json:"transfer_order"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return nil, err
	}
	if body.Section == nil {
		return []LineItem{}, nil
	}
	return collect(body.Section.LineItems, func(li rawLineItem) decimal.Decimal {
		return li.QuantityTransfer.Neg()
	})
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

// rawLineItem is the union of the line-item fields used by all variants.
type rawLineItem struct {
	ItemID           FlexibleID      `json:"item_id"`
	WarehouseID      FlexibleID      `json:"warehouse_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	QuantityAdjusted decimal.Decimal `json:"quantity_adjusted"`
	QuantityTransfer decimal.Decimal `json:"quantity_transfer"`
}

var (
	minQuantity = decimal.NewFromInt(math.MinInt64)
	maxQuantity = decimal.NewFromInt(math.MaxInt64)
)

func collect(raw []rawLineItem, quantity func(rawLineItem) decimal.Decimal) ([]LineItem, error) {
	items := make([]LineItem, 0, len(raw))
	for _, li := range raw {
		q := quantity(li)
		if !q.IsInteger() {
			return nil, fmt.Errorf("%w: item %s quantity %s", ErrFractionalQuantity, li.ItemID, q.String())
		}
		if q.LessThan(minQuantity) || q.GreaterThan(maxQuantity) {
			return nil, fmt.Errorf("%w: item %s quantity %s", ErrQuantityOutOfRange, li.ItemID, q.String())
		}
		items = append(items, LineItem{
			InventoryItemID: string(li.ItemID),
			Quantity:        q.IntPart(),
			WarehouseID:     string(li.WarehouseID),
		})
	}
	return items, nil
}

func decodePayload(payload []byte, v any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// FlexibleID accepts identifiers sent either as JSON strings or numbers.
// Numbers are kept verbatim so large ids do not lose precision.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*f = FlexibleID(n.String())
	return nil
}

// String returns the identifier
func (f FlexibleID) String() string {
	return string(f)
}
