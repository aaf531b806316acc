package commerce

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orderdesk-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByID_NormalizesLegacyFieldNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/orders/abc123", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		// Legacy spellings only: _id and status.
		w.Write([]byte(`{"_id":"abc123","orderNumber":"ORD-7","status":"Shipped","paymentStatus":"unpaid","paymentMethod":"cod"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Minute)
	order, err := client.GetByID(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", order.ID)
	assert.Equal(t, domain.OrderStatusShipped, order.OrderStatus)
	assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)
}

func TestGetByID_PrefersCanonicalFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"abc123","_id":"stale","orderStatus":"delivered","status":"shipped"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Minute)
	order, err := client.GetByID(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", order.ID)
	assert.Equal(t, domain.OrderStatusDelivered, order.OrderStatus)
}

func TestGetByID_KeepsUnknownStatusValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"abc123","orderStatus":"refunded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Minute)
	order, err := client.GetByID(context.Background(), "abc123")
	require.NoError(t, err)

	// The policy layer fails open on unknown statuses; dropping the raw value
	// here would strand the order.
	assert.Equal(t, domain.OrderStatus("refunded"), order.OrderStatus)
	assert.False(t, order.OrderStatus.Known())
}

func TestUpdateStatus_WritesCanonicalFieldName(t *testing.T) {
	var captured map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, "/api/orders/abc123/status", r.URL.Path)

		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &captured))

		w.Write([]byte(`{"id":"abc123","orderStatus":"processing"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Minute)
	order, err := client.UpdateStatus(context.Background(), "abc123", domain.OrderStatusProcessing)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"orderStatus": "processing"}, captured)
	assert.Equal(t, domain.OrderStatusProcessing, order.OrderStatus)
}

func TestUpdateFulfillment_WritesStatusAndPayment(t *testing.T) {
	var captured map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, "/api/orders/abc123", r.URL.Path)

		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &captured))

		w.Write([]byte(`{"id":"abc123","orderStatus":"delivered","paymentStatus":"paid"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Minute)
	order, err := client.UpdateFulfillment(context.Background(), "abc123", domain.OrderStatusDelivered, domain.PaymentStatusPaid)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"orderStatus":   "delivered",
		"paymentStatus": "paid",
	}, captured)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
}

func TestList_ForwardsFilterParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("pageSize"))
		assert.Equal(t, "shipped", q.Get("status"))
		assert.Equal(t, "unpaid", q.Get("paymentStatus"))

		w.Write([]byte(`{"orders":[{"_id":"o1","status":"shipped"}],"total":41,"page":2,"pages":3}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Minute)
	page, err := client.List(context.Background(), domain.OrderFilter{
		Page:          2,
		PageSize:      20,
		Status:        "shipped",
		PaymentStatus: "unpaid",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(41), page.Total)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "o1", page.Orders[0].ID)
	assert.Equal(t, domain.OrderStatusShipped, page.Orders[0].OrderStatus)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "structured message wins",
			status:      http.StatusBadRequest,
			body:        `{"message":"order already closed"}`,
			wantMessage: "order already closed",
		},
		{
			name:        "error field as fallback",
			status:      http.StatusInternalServerError,
			body:        `{"error":"db down"}`,
			wantMessage: "db down",
		},
		{
			name:        "rate limited",
			status:      http.StatusTooManyRequests,
			body:        ``,
			wantMessage: "too many requests, please try again shortly",
		},
		{
			name:        "payload too large",
			status:      http.StatusRequestEntityTooLarge,
			body:        ``,
			wantMessage: "request payload too large",
		},
		{
			name:        "generic fallback",
			status:      http.StatusBadGateway,
			body:        `not json`,
			wantMessage: "order service request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "", time.Minute)
			_, err := client.GetByID(context.Background(), "abc123")

			var transport *domain.TransportError
			require.ErrorAs(t, err, &transport)
			assert.Equal(t, tt.status, transport.StatusCode)
			assert.Contains(t, transport.Error(), tt.wantMessage)
		})
	}
}

func TestUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.GetByID(context.Background(), "abc123")

	var transport *domain.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Contains(t, transport.Error(), "order service is unreachable")
}
