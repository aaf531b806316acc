package domain

import "strings"

// OrderStatus is the fulfillment state of an order. The canonical wire value
// is the lowercase string.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is the settlement state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusFailed PaymentStatus = "failed"
)

// PaymentMethodCOD marks cash-on-delivery orders; matching is
// case-insensitive.
const PaymentMethodCOD = "cod"

// ForwardFlow is the normal fulfillment progression. Cancellation is the only
// escape from it.
var ForwardFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// OrderStatuses is every known status, in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var PaymentStatuses = []PaymentStatus{
	PaymentStatusUnpaid,
	PaymentStatusPaid,
	PaymentStatusFailed,
}

// ParseOrderStatus normalizes a raw status value. The normalized value is
// returned even when unrecognized so callers can carry it through; ok reports
// whether it is a known status.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Known()
}

func ParsePaymentStatus(raw string) (PaymentStatus, bool) {
	payment := PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch payment {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusFailed:
		return payment, true
	}
	return payment, false
}

func (s OrderStatus) Known() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func forwardIndex(s OrderStatus) int {
	for i, status := range ForwardFlow {
		if status == s {
			return i
		}
	}
	return -1
}

// LegalNextStatuses returns the statuses an order may move to from current,
// including current itself (selecting it is a no-op).
//
// Non-terminal statuses may move forward along the flow or be cancelled,
// never backward. Terminal statuses offer only themselves. An unknown status
// fails open: every option stays available so corrupt upstream data never
// strands an order.
func LegalNextStatuses(current OrderStatus) []OrderStatus {
	if current.Terminal() {
		return []OrderStatus{current}
	}

	idx := forwardIndex(current)
	if idx < 0 {
		options := make([]OrderStatus, 0, len(ForwardFlow)+1)
		options = append(options, ForwardFlow...)
		options = append(options, OrderStatusCancelled)
		return options
	}

	options := make([]OrderStatus, 0, len(ForwardFlow)-idx+1)
	options = append(options, ForwardFlow[idx:]...)
	options = append(options, OrderStatusCancelled)
	return options
}

// CanTransition reports whether moving from current to target is legal.
// current == target is not a transition and returns false.
func CanTransition(current, target OrderStatus) bool {
	if current == target {
		return false
	}
	for _, status := range LegalNextStatuses(current) {
		if status == target {
			return true
		}
	}
	return false
}

// RequiresPaymentDecision reports whether a transition of order to target must
// solicit a payment status: a cash-on-delivery order being marked delivered
// while its payment is not yet settled. This is the only coupling between the
// two status fields.
func RequiresPaymentDecision(order *Order, target OrderStatus) bool {
	return target == OrderStatusDelivered &&
		strings.EqualFold(order.PaymentMethod, PaymentMethodCOD) &&
		order.PaymentStatus != PaymentStatusPaid
}
