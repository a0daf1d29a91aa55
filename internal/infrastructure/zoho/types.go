package zoho

import (
	"encoding/json"
	"fmt"

	"github.com/storesync/backend/internal/domain/storesync"
)

// envelope is the wrapper every inventory API response shares. A non-zero
// code is a failure even when the HTTP status is 2xx.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// apiError is a non-zero code returned by the inventory API.
type apiError struct {
	Status  int
	Code    int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("zoho: HTTP %d code %d: %s", e.Status, e.Code, e.Message)
}

type contactJSON struct {
	ContactID   string      `json:"contact_id"`
	ContactName string      `json:"contact_name"`
	Email       string      `json:"email"`
}

type listContactsResponse struct {
	envelope
	Contacts []contactJSON `json:"contacts"`
}

type contactResponse struct {
	envelope
	Contact contactJSON `json:"contact"`
}

type salesOrderJSON struct {
	SalesOrderID     string      `json:"salesorder_id"`
	SalesOrderNumber string      `json:"salesorder_number"`
}

type salesOrderResponse struct {
	envelope
	SalesOrder salesOrderJSON `json:"salesorder"`
}

// salesOrderRequest sends rates and quantities as JSON numbers.
type salesOrderRequest struct {
	CustomerID string          `json:"customer_id"`
	LineItems  []salesOrderRow `json:"line_items"`
	Notes      string          `json:"notes,omitempty"`
}

type salesOrderRow struct {
	ItemID   string      `json:"item_id"`
	Rate     json.Number `json:"rate"`
	Quantity json.Number `json:"quantity"`
}

func newSalesOrderRequest(in storesync.SalesOrderInput) salesOrderRequest {
	rows := make([]salesOrderRow, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		rows = append(rows, salesOrderRow{
			ItemID:   li.ItemID,
			Rate:     json.Number(li.Rate.String()),
			Quantity: json.Number(li.Quantity.String()),
		})
	}
	return salesOrderRequest{CustomerID: in.CustomerID, LineItems: rows, Notes: in.Notes}
}
