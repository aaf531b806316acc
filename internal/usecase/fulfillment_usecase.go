package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"orderdesk-backend/internal/domain"
	"orderdesk-backend/pkg/logger"
)

// Propagator is notified after a store-confirmed transition so every cached
// view of the order converges. A failed transition must never reach it.
type Propagator interface {
	InvalidateOrder(orderID string)
}

// TransitionRequest is one operator-initiated status change.
type TransitionRequest struct {
	OrderID       string
	TargetStatus  domain.OrderStatus
	TargetPayment *domain.PaymentStatus
	Note          string
	ActorID       string
}

// FulfillmentUsecase is the single gateway through which order status
// mutations flow: it validates against the transition policy, issues exactly
// one store call per accepted request, records the audit entry, and triggers
// cache propagation on success.
type FulfillmentUsecase struct {
	store      domain.OrderStore
	history    domain.StatusHistoryRepository
	propagator Propagator

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewFulfillmentUsecase(store domain.OrderStore, history domain.StatusHistoryRepository, propagator Propagator) *FulfillmentUsecase {
	return &FulfillmentUsecase{
		store:      store,
		history:    history,
		propagator: propagator,
		inFlight:   make(map[string]struct{}),
	}
}

// RequestTransition applies a status change to an order.
//
// Ordering: validation happens before any store call; propagation happens
// after the store confirms success and before the result is returned, so no
// read through this service observes the pre-transition status afterwards.
func (u *FulfillmentUsecase) RequestTransition(ctx context.Context, req TransitionRequest) (*domain.AppliedTransition, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, &domain.PreconditionError{Reason: "order id is required"}
	}
	if !req.TargetStatus.Known() {
		return nil, &domain.PreconditionError{Reason: fmt.Sprintf("unknown order status %q", string(req.TargetStatus))}
	}

	// One transition per order at a time. Mirrors the per-surface in-flight
	// guard of the dashboard; duplicate submissions get a conflict, not a
	// second store write.
	if !u.begin(orderID) {
		return nil, &domain.ConflictError{OrderID: orderID}
	}
	defer u.end(orderID)

	// Fresh read: legality is judged against the store's current status, not
	// a cached copy.
	order, err := u.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Selecting the current status is a no-op, short-circuited before any
	// mutation call.
	if order.OrderStatus == req.TargetStatus {
		return &domain.AppliedTransition{
			OrderID:     order.ID,
			OrderStatus: order.OrderStatus,
			Changed:     false,
		}, nil
	}

	if !domain.CanTransition(order.OrderStatus, req.TargetStatus) {
		return nil, &domain.IllegalTransitionError{From: order.OrderStatus, To: req.TargetStatus}
	}

	// A payment status may only ride along under the COD coupling rule. The
	// surfaces never produce such a request outside it, so one here is a
	// caller bug; rejecting beats silently dropping a field the caller sent.
	if req.TargetPayment != nil && !domain.RequiresPaymentDecision(order, req.TargetStatus) {
		return nil, &domain.PreconditionError{Reason: "payment status change is not applicable to this transition"}
	}

	var updated *domain.Order
	if req.TargetPayment != nil {
		updated, err = u.store.UpdateFulfillment(ctx, orderID, req.TargetStatus, *req.TargetPayment)
	} else {
		updated, err = u.store.UpdateStatus(ctx, orderID, req.TargetStatus)
	}
	if err != nil {
		return nil, err
	}

	applied := &domain.AppliedTransition{
		OrderID:     updated.ID,
		OrderStatus: updated.OrderStatus,
		Changed:     true,
	}
	if req.TargetPayment != nil {
		payment := updated.PaymentStatus
		applied.PaymentStatus = &payment
	}

	u.recordHistory(ctx, order, req, applied)

	// Broadcast-invalidate only after the store confirmed the write.
	u.propagator.InvalidateOrder(orderID)

	return applied, nil
}

// OrderHistory returns the audit trail for an order.
func (u *FulfillmentUsecase) OrderHistory(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, &domain.PreconditionError{Reason: "order id is required"}
	}
	return u.history.ListByOrder(ctx, orderID)
}

func (u *FulfillmentUsecase) begin(orderID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, busy := u.inFlight[orderID]; busy {
		return false
	}
	u.inFlight[orderID] = struct{}{}
	return true
}

func (u *FulfillmentUsecase) end(orderID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.inFlight, orderID)
}

// recordHistory writes the audit entry. The upstream write already happened,
// so a failure here is logged rather than returned: failing the request would
// tell the caller the transition did not apply when it did.
func (u *FulfillmentUsecase) recordHistory(ctx context.Context, before *domain.Order, req TransitionRequest, applied *domain.AppliedTransition) {
	if u.history == nil {
		return
	}

	change := &domain.StatusChange{
		OrderID:        applied.OrderID,
		PreviousStatus: before.OrderStatus,
		NewStatus:      applied.OrderStatus,
		PaymentStatus:  applied.PaymentStatus,
	}
	if req.Note != "" {
		note := req.Note
		change.Note = &note
	}
	if req.ActorID != "" {
		actor := req.ActorID
		change.ActorID = &actor
	}

	if err := u.history.Record(ctx, change); err != nil {
		logger.WithContext(ctx).Error().Err(err).
			Str("order_id", applied.OrderID).
			Str("new_status", string(applied.OrderStatus)).
			Msg("Failed to record status history")
	}
}
