package usecase

import (
	"context"
	"fmt"

	"orderdesk-backend/config"
	"orderdesk-backend/internal/domain"
	"orderdesk-backend/pkg/cache"
)

// Cache key scheme shared by the read paths and the propagator.
const (
	cacheKeyOrderPrefix     = "order:"
	cacheKeyOrderListPrefix = "orders:list:"
	cacheKeyStatusCounts    = "stats:order_status_counts"
)

// OrdersUsecase serves the read views of orders (list pages, single order,
// transition options) from a shared cache, and implements the propagation
// contract: after an applied transition it drops every cached representation
// of the order so all views re-fetch the same state.
type OrdersUsecase struct {
	store domain.OrderStore
	cache cache.CacheService
	cfg   *config.Config
}

func NewOrdersUsecase(store domain.OrderStore, cacheService cache.CacheService, cfg *config.Config) *OrdersUsecase {
	return &OrdersUsecase{
		store: store,
		cache: cacheService,
		cfg:   cfg,
	}
}

func listKey(f domain.OrderFilter) string {
	return fmt.Sprintf("%s%d:%d:%s:%s:%s:%s",
		cacheKeyOrderListPrefix, f.Page, f.PageSize, f.Status, f.PaymentStatus, f.Search, f.Sort)
}

func (u *OrdersUsecase) ListOrders(ctx context.Context, filter domain.OrderFilter) (*domain.OrderPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	key := listKey(filter)
	if val, found := u.cache.Get(key); found {
		return val.(*domain.OrderPage), nil
	}

	page, err := u.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	u.cache.Set(key, page, u.cfg.CacheListTTL)
	return page, nil
}

func (u *OrdersUsecase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	key := cacheKeyOrderPrefix + id
	if val, found := u.cache.Get(key); found {
		return val.(*domain.Order), nil
	}

	order, err := u.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.cache.Set(key, order, u.cfg.CacheOrderTTL)
	return order, nil
}

// TransitionOption is one selectable target status for an order.
type TransitionOption struct {
	Status          domain.OrderStatus `json:"status"`
	RequiresPayment bool               `json:"requiresPayment"`
}

// TransitionOptions is what a surface renders: the legal targets for an order
// and, per target, whether a payment decision must be solicited. Surfaces
// never hardcode this list.
type TransitionOptions struct {
	OrderID        string                 `json:"orderId"`
	Current        domain.OrderStatus     `json:"current"`
	Terminal       bool                   `json:"terminal"`
	Next           []TransitionOption     `json:"next"`
	PaymentOptions []domain.PaymentStatus `json:"paymentOptions,omitempty"`
}

func (u *OrdersUsecase) TransitionOptions(ctx context.Context, orderID string) (*TransitionOptions, error) {
	order, err := u.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	opts := &TransitionOptions{
		OrderID:  order.ID,
		Current:  order.OrderStatus,
		Terminal: order.OrderStatus.Terminal(),
	}

	solicitPayment := false
	for _, status := range domain.LegalNextStatuses(order.OrderStatus) {
		requires := domain.RequiresPaymentDecision(order, status)
		solicitPayment = solicitPayment || requires
		opts.Next = append(opts.Next, TransitionOption{
			Status:          status,
			RequiresPayment: requires,
		})
	}
	if solicitPayment {
		opts.PaymentOptions = domain.PaymentStatuses
	}

	return opts, nil
}

// InvalidateOrder implements the broadcast-invalidate contract: the single
// order entry, every cached list page that might contain it, and the
// status-derived counters are all dropped. Redundant refetches are the price
// of the guarantee that no view serves a stale status.
func (u *OrdersUsecase) InvalidateOrder(orderID string) {
	u.cache.Delete(cacheKeyOrderPrefix + orderID)
	u.cache.DeletePrefix(cacheKeyOrderListPrefix)
	u.cache.Delete(cacheKeyStatusCounts)
}
