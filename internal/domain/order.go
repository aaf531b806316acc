package domain

import (
	"context"
	"time"
)

type OrderFilter struct {
	Page          int
	PageSize      int
	Status        string
	PaymentStatus string
	Search        string
	Sort          string
}

// --- Order Entities ---

// Order is the canonical view of an upstream order. Field-name aliasing on the
// wire (status vs orderStatus, _id vs id) is resolved by the commerce client
// before an Order is constructed; nothing past that boundary branches on
// legacy names.
type Order struct {
	ID            string        `json:"id"`
	OrderNumber   string        `json:"orderNumber"` // display only, never a mutation key
	CustomerName  string        `json:"customerName,omitempty"`
	OrderStatus   OrderStatus   `json:"orderStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod"`
	TotalAmount   float64       `json:"totalAmount"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// OrderPage is one page of the upstream order list.
type OrderPage struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
}

// AppliedTransition is the result of an accepted transition request, returned
// so callers can reconcile local views before the refetch lands.
type AppliedTransition struct {
	OrderID       string         `json:"orderId"`
	OrderStatus   OrderStatus    `json:"orderStatus"`
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"` // set when the mutation changed it
	Changed       bool           `json:"changed"`
}

// StatusChange is one audit entry of the fulfillment workflow.
type StatusChange struct {
	ID             string         `json:"id"`
	OrderID        string         `json:"orderId"`
	PreviousStatus OrderStatus    `json:"previousStatus"`
	NewStatus      OrderStatus    `json:"newStatus"`
	PaymentStatus  *PaymentStatus `json:"paymentStatus,omitempty"`
	Note           *string        `json:"note,omitempty"`
	ActorID        *string        `json:"actorId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// --- Interfaces ---

// OrderStore is the boundary to the upstream commerce API that owns orders.
// Exactly one store call is issued per accepted mutation; no automatic retries.
type OrderStore interface {
	List(ctx context.Context, filter OrderFilter) (*OrderPage, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) (*Order, error)
	UpdateFulfillment(ctx context.Context, id string, status OrderStatus, payment PaymentStatus) (*Order, error)
}

// StatusHistoryRepository persists the local audit trail of status changes.
type StatusHistoryRepository interface {
	Record(ctx context.Context, change *StatusChange) error
	ListByOrder(ctx context.Context, orderID string) ([]StatusChange, error)
}
