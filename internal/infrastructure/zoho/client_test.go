package zoho

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/config"
)

// recordedCall is one RecordRemoteCall invocation
type recordedCall struct {
	service string
	op      string
	err     error
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeRecorder) RecordRemoteCall(_ context.Context, service, op string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{service: service, op: op, err: err})
}

func createMockZohoServer(_ *testing.T, handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

func createTestClient(t *testing.T, serverURL string, recorder CallRecorder) *Client {
	t.Helper()
	opts := []Option{WithHTTPClient(&http.Client{Timeout: 5 * time.Second})}
	if recorder != nil {
		opts = append(opts, WithRecorder(recorder))
	}
	connector := NewConnector(config.InventoryConfig{APIURLTemplate: serverURL}, opts...)
	store := storesync.NewStore("org-1", 1001)
	return connector.Client(store, "access-1")
}

func TestClient_ListContactsByEmail(t *testing.T) {
	server := createMockZohoServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/contacts", r.URL.Path)
		assert.Equal(t, "org-1", r.URL.Query().Get("organization_id"))
		assert.Equal(t, "buyer@example.com", r.URL.Query().Get("email"))
		assert.Equal(t, "Zoho-oauthtoken access-1", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"code":0,"message":"success","contacts":[{"contact_id":"460000000026049","contact_name":"Ada"}]}`)
	})
	defer server.Close()

	recorder := &fakeRecorder{}
	client := createTestClient(t, server.URL, recorder)

	contacts, err := client.ListContactsByEmail(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "460000000026049", contacts[0].ID)
	assert.Equal(t, "Ada", contacts[0].Name)

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, ServiceName, recorder.calls[0].service)
	assert.Equal(t, "list_contacts", recorder.calls[0].op)
	assert.NoError(t, recorder.calls[0].err)
}

func TestClient_CreateContact(t *testing.T) {
	server := createMockZohoServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/contacts", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada Lovelace", body["contact_name"])
		shipping := body["shipping_address"].(map[string]any)
		assert.Equal(t, "London", shipping["city"])

		_, _ = io.WriteString(w, `{"code":0,"contact":{"contact_id":"c-9","contact_name":"Ada Lovelace"}}`)
	})
	defer server.Close()

	client := createTestClient(t, server.URL, nil)
	contact, err := client.CreateContact(context.Background(), storesync.ContactInput{
		ContactName:     "Ada Lovelace",
		ShippingAddress: storesync.Address{City: "London"},
	})
	require.NoError(t, err)
	assert.Equal(t, "c-9", contact.ID)
}

func TestClient_CreateSalesOrder(t *testing.T) {
	server := createMockZohoServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/salesorders", r.URL.Path)

		var body struct {
			CustomerID string `json:"customer_id"`
			LineItems  []struct {
				ItemID   string          `json:"item_id"`
				Rate     decimal.Decimal `json:"rate"`
				Quantity decimal.Decimal `json:"quantity"`
			} `json:"line_items"`
			Notes string `json:"notes"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "c-9", body.CustomerID)
		require.Len(t, body.LineItems, 1)
		assert.Equal(t, "item-1", body.LineItems[0].ItemID)
		assert.True(t, body.LineItems[0].Rate.Equal(decimal.RequireFromString("19.99")))
		assert.Equal(t, "Storefront order #42", body.Notes)

		_, _ = io.WriteString(w, `{"code":0,"salesorder":{"salesorder_id":"so-1","salesorder_number":"SO-00001"}}`)
	})
	defer server.Close()

	client := createTestClient(t, server.URL, nil)
	so, err := client.CreateSalesOrder(context.Background(), storesync.SalesOrderInput{
		CustomerID: "c-9",
		LineItems: []storesync.SalesOrderLine{{
			ItemID:   "item-1",
			Rate:     decimal.RequireFromString("19.99"),
			Quantity: decimal.NewFromInt(2),
		}},
		Notes: "Storefront order #42",
	})
	require.NoError(t, err)
	assert.Equal(t, "so-1", so.ID)
	assert.Equal(t, "SO-00001", so.Number)
}

func TestClient_ConfirmAndDeleteSalesOrder(t *testing.T) {
	var got []string
	server := createMockZohoServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Method+" "+r.URL.Path)
		_, _ = io.WriteString(w, `{"code":0,"message":"ok"}`)
	})
	defer server.Close()

	client := createTestClient(t, server.URL, nil)
	require.NoError(t, client.ConfirmSalesOrder(context.Background(), "so-1"))
	require.NoError(t, client.DeleteSalesOrder(context.Background(), "so-1"))

	assert.Equal(t, []string{
		"POST /salesorders/so-1/status/confirmed",
		"DELETE /salesorders/so-1",
	}, got)
}

func TestClient_Errors(t *testing.T) {
	t.Run("non-zero code on HTTP 200", func(t *testing.T) {
		server := createMockZohoServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"code":1002,"message":"Sales order does not exist."}`)
		})
		defer server.Close()

		recorder := &fakeRecorder{}
		client := createTestClient(t, server.URL, recorder)
		err := client.ConfirmSalesOrder(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, storesync.ErrRemoteCall))
		assert.Equal(t, 1002, APIErrorCode(err))
		assert.Contains(t, err.Error(), "Sales order does not exist.")
		require.Len(t, recorder.calls, 1)
		assert.Error(t, recorder.calls[0].err)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		server := createMockZohoServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"code":57,"message":"You are not authorized to perform this operation"}`)
		})
		defer server.Close()

		client := createTestClient(t, server.URL, nil)
		_, err := client.ListContactsByEmail(context.Background(), "x@example.com")
		require.Error(t, err)
		assert.True(t, errors.Is(err, storesync.ErrRemoteCall))
		assert.Equal(t, 57, APIErrorCode(err))
	})

	t.Run("HTTP error without body", func(t *testing.T) {
		server := createMockZohoServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		defer server.Close()

		client := createTestClient(t, server.URL, nil)
		err := client.DeleteSalesOrder(context.Background(), "so-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, storesync.ErrRemoteCall))
		assert.Contains(t, err.Error(), http.StatusText(http.StatusBadGateway))
	})

	t.Run("missing id in create response", func(t *testing.T) {
		server := createMockZohoServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"code":0,"contact":{}}`)
		})
		defer server.Close()

		client := createTestClient(t, server.URL, nil)
		_, err := client.CreateContact(context.Background(), storesync.ContactInput{ContactName: "x"})
		assert.True(t, errors.Is(err, storesync.ErrRemoteCall))
	})

	t.Run("transport failure", func(t *testing.T) {
		server := createMockZohoServer(t, func(w http.ResponseWriter, r *http.Request) {})
		url := server.URL
		server.Close()

		client := createTestClient(t, url, nil)
		_, err := client.ListContactsByEmail(context.Background(), "x@example.com")
		assert.True(t, errors.Is(err, storesync.ErrRemoteCall))
	})
}

func TestConnector_ExpandsLocation(t *testing.T) {
	connector := NewConnector(config.InventoryConfig{
		APIURLTemplate: "https://www.zohoapis.%s/inventory/v1",
	})

	tests := []struct {
		location string
		want     string
	}{
		{location: "eu", want: "https://www.zohoapis.eu/inventory/v1"},
		{location: "us", want: "https://www.zohoapis.com/inventory/v1"},
		{location: "com", want: "https://www.zohoapis.com/inventory/v1"},
		{location: "au", want: "https://www.zohoapis.com.au/inventory/v1"},
		{location: "", want: "https://www.zohoapis.eu/inventory/v1"},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			store := storesync.NewStore("org", 1)
			store.Location = tt.location
			client := connector.Client(store, "tok")
			assert.Equal(t, tt.want, client.baseURL)
		})
	}
}
