package commerce

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"orderdesk-backend/internal/domain"
	"orderdesk-backend/pkg/logger"

	"github.com/goccy/go-json"
)

// Client talks to the legacy commerce API that owns order data. All wire-level
// quirks of that API stay inside this package: field-name aliasing
// (_id vs id, status vs orderStatus) and raw transport errors never cross the
// boundary.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient builds a commerce API client. timeout bounds the whole request;
// the legacy backend can take minutes under load, and the caller resubmits on
// timeout rather than this client retrying.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
	}
}

// --- Wire Types ---

// wireOrder mirrors the upstream JSON. The legacy API is inconsistent about
// field names across endpoints, so both spellings are accepted here and
// normalized exactly once.
type wireOrder struct {
	ID            string    `json:"id"`
	LegacyID      string    `json:"_id"`
	OrderNumber   string    `json:"orderNumber"`
	CustomerName  string    `json:"customerName"`
	OrderStatus   string    `json:"orderStatus"`
	LegacyStatus  string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMethod string    `json:"paymentMethod"`
	TotalAmount   float64   `json:"totalAmount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (w *wireOrder) toDomain() domain.Order {
	id := w.ID
	if id == "" {
		id = w.LegacyID
	}

	// Prefer orderStatus when both are present.
	rawStatus := w.OrderStatus
	if rawStatus == "" {
		rawStatus = w.LegacyStatus
	}

	// Keep the raw value even when unrecognized: the transition policy fails
	// open on unknown statuses instead of stranding the order here.
	status, _ := domain.ParseOrderStatus(rawStatus)
	payment, _ := domain.ParsePaymentStatus(w.PaymentStatus)

	return domain.Order{
		ID:            id,
		OrderNumber:   w.OrderNumber,
		CustomerName:  w.CustomerName,
		OrderStatus:   status,
		PaymentStatus: payment,
		PaymentMethod: w.PaymentMethod,
		TotalAmount:   w.TotalAmount,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

type wireOrderPage struct {
	Orders []wireOrder `json:"orders"`
	Total  int64       `json:"total"`
	Page   int         `json:"page"`
	Pages  int         `json:"pages"`
}

// --- Store Operations ---

func (c *Client) List(ctx context.Context, filter domain.OrderFilter) (*domain.OrderPage, error) {
	q := url.Values{}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(filter.PageSize))
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q.Set("paymentStatus", filter.PaymentStatus)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Sort != "" {
		q.Set("sort", filter.Sort)
	}

	path := "/api/orders"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var wire wireOrderPage
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}

	page := &domain.OrderPage{
		Orders: make([]domain.Order, len(wire.Orders)),
		Total:  wire.Total,
		Page:   wire.Page,
		Pages:  wire.Pages,
	}
	for i := range wire.Orders {
		page.Orders[i] = wire.Orders[i].toDomain()
	}
	return page, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var wire wireOrder
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &wire); err != nil {
		return nil, err
	}
	order := wire.toDomain()
	return &order, nil
}

// UpdateStatus issues a status-only mutation. The write always uses the
// canonical orderStatus field name.
func (c *Client) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	body := map[string]string{"orderStatus": string(status)}

	var wire wireOrder
	if err := c.do(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(id)+"/status", body, &wire); err != nil {
		return nil, err
	}
	order := wire.toDomain()
	return &order, nil
}

// UpdateFulfillment issues the combined status + payment mutation, used only
// when a COD order is being marked delivered.
func (c *Client) UpdateFulfillment(ctx context.Context, id string, status domain.OrderStatus, payment domain.PaymentStatus) (*domain.Order, error) {
	body := map[string]string{
		"orderStatus":   string(status),
		"paymentStatus": string(payment),
	}

	var wire wireOrder
	if err := c.do(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(id), body, &wire); err != nil {
		return nil, err
	}
	order := wire.toDomain()
	return &order, nil
}

// --- Transport ---

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Str("method", method).Str("path", path).Msg("Commerce API unreachable")
		return &domain.TransportError{Message: "order service is unreachable, please try again"}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.asTransportError(ctx, resp, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			logger.WithContext(ctx).Error().Err(err).Str("path", path).Msg("Commerce API returned malformed body")
			return &domain.TransportError{StatusCode: resp.StatusCode, Message: "order service returned an unexpected response"}
		}
	}
	return nil
}

// asTransportError builds the user-facing failure. Priority: a structured
// server message, then a recognizable HTTP status, then a generic fallback.
func (c *Client) asTransportError(ctx context.Context, resp *http.Response, method, path string) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var serverMsg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(data, &serverMsg)

	message := serverMsg.Message
	if message == "" {
		message = serverMsg.Error
	}
	if message == "" {
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			message = "too many requests, please try again shortly"
		case http.StatusRequestEntityTooLarge:
			message = "request payload too large"
		default:
			message = "order service request failed"
		}
	}

	logger.WithContext(ctx).Warn().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("Commerce API error")

	return &domain.TransportError{StatusCode: resp.StatusCode, Message: message}
}
