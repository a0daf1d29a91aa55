// Package zoho is the HTTP client for the inventory platform: contacts and
// sales orders on the REST API, plus the OAuth authorization flow.
package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/storesync/backend/internal/domain/storesync"
)

// maxResponseSize caps how much of a response body is read (4MB).
const maxResponseSize = 4 * 1024 * 1024

// ServiceName labels outbound-call metrics.
const ServiceName = "inventory"

// CallRecorder observes outbound call latency. telemetry.SyncMetrics
// satisfies it.
type CallRecorder interface {
	RecordRemoteCall(ctx context.Context, service, operation string, d time.Duration, err error)
}

// Client is bound to one organization and access token.
type Client struct {
	baseURL        string
	organizationID string
	accessToken    string
	httpClient     *http.Client
	recorder       CallRecorder
}

var _ storesync.InventoryGateway = (*Client)(nil)

// ListContactsByEmail returns the contacts whose email matches.
func (c *Client) ListContactsByEmail(ctx context.Context, email string) ([]storesync.Contact, error) {
	var resp listContactsResponse
	q := url.Values{"email": {email}}
	if err := c.do(ctx, "list_contacts", http.MethodGet, "/contacts", q, nil, &resp); err != nil {
		return nil, err
	}

	contacts := make([]storesync.Contact, 0, len(resp.Contacts))
	for _, ct := range resp.Contacts {
		contacts = append(contacts, storesync.Contact{ID: ct.ContactID, Name: ct.ContactName})
	}
	return contacts, nil
}

// CreateContact creates a customer contact.
func (c *Client) CreateContact(ctx context.Context, input storesync.ContactInput) (*storesync.Contact, error) {
	var resp contactResponse
	if err := c.do(ctx, "create_contact", http.MethodPost, "/contacts", nil, input, &resp); err != nil {
		return nil, err
	}
	if resp.Contact.ContactID == "" {
		return nil, fmt.Errorf("%w: create contact returned no contact_id", storesync.ErrRemoteCall)
	}
	return &storesync.Contact{ID: resp.Contact.ContactID, Name: resp.Contact.ContactName}, nil
}

// CreateSalesOrder creates a draft sales order.
func (c *Client) CreateSalesOrder(ctx context.Context, input storesync.SalesOrderInput) (*storesync.SalesOrder, error) {
	var resp salesOrderResponse
	if err := c.do(ctx, "create_salesorder", http.MethodPost, "/salesorders", nil, newSalesOrderRequest(input), &resp); err != nil {
		return nil, err
	}
	if resp.SalesOrder.SalesOrderID == "" {
		return nil, fmt.Errorf("%w: create sales order returned no salesorder_id", storesync.ErrRemoteCall)
	}
	return &storesync.SalesOrder{
		ID:     resp.SalesOrder.SalesOrderID,
		Number: resp.SalesOrder.SalesOrderNumber,
	}, nil
}

// ConfirmSalesOrder moves a sales order from draft to confirmed.
func (c *Client) ConfirmSalesOrder(ctx context.Context, salesOrderID string) error {
	path := "/salesorders/" + url.PathEscape(salesOrderID) + "/status/confirmed"
	return c.do(ctx, "confirm_salesorder", http.MethodPost, path, nil, nil, &envelope{})
}

// DeleteSalesOrder deletes a sales order.
func (c *Client) DeleteSalesOrder(ctx context.Context, salesOrderID string) error {
	path := "/salesorders/" + url.PathEscape(salesOrderID)
	return c.do(ctx, "delete_salesorder", http.MethodDelete, path, nil, nil, &envelope{})
}

// do sends one request. Any transport failure, HTTP error or non-zero
// envelope code is returned wrapped in storesync.ErrRemoteCall.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordRemoteCall(ctx, ServiceName, op, time.Since(start), err)
		}
	}()

	if query == nil {
		query = url.Values{}
	}
	query.Set("organization_id", c.organizationID)
	endpoint := c.baseURL + path + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("zoho: failed to encode %s request: %w", op, mErr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("zoho: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", storesync.ErrRemoteCall, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: %s: failed to read response: %w", storesync.ErrRemoteCall, op, err)
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)
	if resp.StatusCode >= http.StatusBadRequest || env.Code != 0 {
		apiErr := &apiError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s: %w", storesync.ErrRemoteCall, op, apiErr)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: %s: failed to decode response: %w", storesync.ErrRemoteCall, op, err)
		}
	}
	return nil
}

// APIErrorCode returns the inventory API error code carried by err, or 0.
func APIErrorCode(err error) int {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
