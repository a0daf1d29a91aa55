package storesync

// WebhookCategory identifies an inventory-platform webhook family.
// Each category has its own shared secret and payload shape.
type WebhookCategory string

const (
	CategoryInventoryAdjustment WebhookCategory = "inventory-adjustment"
	CategorySales               WebhookCategory = "sales"
	CategoryPurchase            WebhookCategory = "purchase"
	CategoryTransfer            WebhookCategory = "transfer"
)

// AllCategories returns every supported category in routing order.
func AllCategories() []WebhookCategory {
	return []WebhookCategory{
		CategoryInventoryAdjustment,
		CategorySales,
		CategoryPurchase,
		CategoryTransfer,
	}
}

// IsValid reports whether c is a supported category
func (c WebhookCategory) IsValid() bool {
	switch c {
	case CategoryInventoryAdjustment, CategorySales, CategoryPurchase, CategoryTransfer:
		return true
	}
	return false
}

// String returns the string representation
func (c WebhookCategory) String() string {
	return string(c)
}

// ParseCategory converts a route segment into a category.
func ParseCategory(s string) (WebhookCategory, error) {
	c := WebhookCategory(s)
	if !c.IsValid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}
