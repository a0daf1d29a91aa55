package zoho

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/config"
)

const defaultTimeout = 30 * time.Second

// Option configures a Connector or an Authorizer
type Option func(*options)

type options struct {
	httpClient *http.Client
	recorder   CallRecorder
}

// WithHTTPClient replaces the traced default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithRecorder records the latency and outcome of every outbound call
func WithRecorder(r CallRecorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

func buildOptions(timeout time.Duration, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = NewHTTPClient(timeout)
	}
	return o
}

// NewHTTPClient returns a client whose transport emits client spans.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Connector hands out API clients bound to one store's organization.
type Connector struct {
	apiURLTemplate string
	httpClient     *http.Client
	recorder       CallRecorder
}

var _ storesync.InventoryConnector = (*Connector)(nil)

// NewConnector creates a connector from the inventory settings
func NewConnector(cfg config.InventoryConfig, opts ...Option) *Connector {
	o := buildOptions(cfg.Timeout, opts)
	return &Connector{
		apiURLTemplate: cfg.APIURLTemplate,
		httpClient:     o.httpClient,
		recorder:       o.recorder,
	}
}

// Connect returns a client for store authenticated with accessToken
func (c *Connector) Connect(store *storesync.Store, accessToken string) storesync.InventoryGateway {
	return c.Client(store, accessToken)
}

// Client is Connect with the concrete return type
func (c *Connector) Client(store *storesync.Store, accessToken string) *Client {
	return &Client{
		baseURL:        strings.TrimRight(expandLocation(c.apiURLTemplate, store.RegionLocation()), "/"),
		organizationID: store.InventoryOrgID,
		accessToken:    accessToken,
		httpClient:     c.httpClient,
		recorder:       c.recorder,
	}
}

// expandLocation fills the %s of a host template with the location's
// domain suffix. Templates without a verb are returned unchanged.
func expandLocation(template, location string) string {
	if !strings.Contains(template, "%s") {
		return template
	}
	tld := TLDForLocation(location)
	if tld == "" {
		tld = storesync.DefaultLocation
	}
	return fmt.Sprintf(template, tld)
}
