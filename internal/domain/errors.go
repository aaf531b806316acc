package domain

import "fmt"

// PreconditionError rejects a transition request before any store call:
// missing order id, unknown target status, or a payment field outside the
// COD coupling rule.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

// IllegalTransitionError rejects a target that is not in the legal next-status
// set for the order's current status. No store call is issued.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: cannot move order from '%s' to '%s'", e.From, e.To)
}

// ConflictError rejects a transition while another one for the same order is
// still in flight.
type ConflictError struct {
	OrderID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a status change for order %s is already in progress", e.OrderID)
}

// TransportError is a failure talking to the upstream order store. Message is
// human-readable and safe to surface; the raw transport error never is.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string { return e.Message }
