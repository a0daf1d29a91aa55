// Package ecwid is the HTTP client for the storefront platform's REST API.
package ecwid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/config"
)

const (
	// maxResponseSize caps how much of a response body is read (4MB).
	maxResponseSize = 4 * 1024 * 1024
	defaultTimeout  = 30 * time.Second

	// ServiceName labels outbound-call metrics.
	ServiceName = "storefront"
)

// CallRecorder observes outbound call latency. telemetry.SyncMetrics
// satisfies it.
type CallRecorder interface {
	RecordRemoteCall(ctx context.Context, service, operation string, d time.Duration, err error)
}

// Option configures a Connector
type Option func(*Connector)

// WithHTTPClient replaces the traced default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(conn *Connector) {
		conn.httpClient = c
	}
}

// WithRecorder records the latency and outcome of every outbound call
func WithRecorder(r CallRecorder) Option {
	return func(conn *Connector) {
		conn.recorder = r
	}
}

// Connector hands out API clients bound to one storefront store.
type Connector struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	recorder    CallRecorder
}

var _ storesync.StorefrontConnector = (*Connector)(nil)

// NewConnector creates a connector from the storefront settings
func NewConnector(cfg config.StorefrontConfig, opts ...Option) *Connector {
	c := &Connector{
		baseURL:     strings.TrimRight(cfg.APIBaseURL, "/"),
		accessToken: cfg.AccessToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c
}

// Connect returns a client for the store's storefront
func (c *Connector) Connect(store *storesync.Store) storesync.StorefrontGateway {
	return c.Client(store.StorefrontStoreID)
}

// Client returns a client for one storefront store id
func (c *Connector) Client(storefrontStoreID int64) *Client {
	return &Client{
		baseURL:     c.baseURL + "/" + strconv.FormatInt(storefrontStoreID, 10),
		accessToken: c.accessToken,
		httpClient:  c.httpClient,
		recorder:    c.recorder,
	}
}

// Client calls the storefront API of one store.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	recorder    CallRecorder
}

var _ storesync.StorefrontGateway = (*Client)(nil)

// GetOrder fetches an order, limited to fields when any are given
func (c *Client) GetOrder(ctx context.Context, orderID string, fields []string) (*storesync.StorefrontOrder, error) {
	var q url.Values
	if len(fields) > 0 {
		q = url.Values{"responseFields": {strings.Join(fields, ",")}}
	}

	var resp orderJSON
	path := "/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, "get_order", http.MethodGet, path, q, nil, &resp); err != nil {
		return nil, err
	}
	order := resp.toDomain()
	if order.ID == "" {
		order.ID = orderID
	}
	return order, nil
}

// AdjustProductStock changes a product's stock level by quantityDelta
func (c *Client) AdjustProductStock(ctx context.Context, productID int64, quantityDelta int64) error {
	path := "/products/" + strconv.FormatInt(productID, 10) + "/inventory"
	body := inventoryAdjustment{QuantityDelta: quantityDelta}

	var resp updateResponse
	if err := c.do(ctx, "adjust_product_stock", http.MethodPut, path, nil, body, &resp); err != nil {
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordRemoteCall(ctx, ServiceName, op, time.Since(start), err)
		}
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("ecwid: failed to encode %s request: %w", op, mErr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("ecwid: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
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

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.ErrorMessage
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s: HTTP %d: %s", storesync.ErrRemoteCall, op, resp.StatusCode, msg)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: %s: failed to decode response: %w", storesync.ErrRemoteCall, op, err)
		}
	}
	return nil
}
