package usecase

import (
	"context"
	"testing"
	"time"

	"orderdesk-backend/config"
	"orderdesk-backend/internal/domain"
	infracache "orderdesk-backend/internal/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		CacheOrderTTL: 5 * time.Minute,
		CacheListTTL:  2 * time.Minute,
		CacheStatsTTL: 5 * time.Minute,
	}
}

func TestListOrders_CachesPages(t *testing.T) {
	store := newFakeStore(
		&domain.Order{ID: "o1", OrderStatus: domain.OrderStatusPending},
		&domain.Order{ID: "o2", OrderStatus: domain.OrderStatusShipped},
	)
	ordersUC := NewOrdersUsecase(store, infracache.NewMemoryCache(time.Minute, time.Minute), testConfig())

	first, err := ordersUC.ListOrders(context.Background(), domain.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.Total)
	assert.Equal(t, 1, store.listCalls)

	second, err := ordersUC.ListOrders(context.Background(), domain.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.listCalls)

	// A different filter is a different cache entry.
	_, err = ordersUC.ListOrders(context.Background(), domain.OrderFilter{Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)
}

func TestGetOrder_CachesByID(t *testing.T) {
	store := newFakeStore(&domain.Order{ID: "o1", OrderStatus: domain.OrderStatusPending})
	ordersUC := NewOrdersUsecase(store, infracache.NewMemoryCache(time.Minute, time.Minute), testConfig())

	_, err := ordersUC.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	_, err = ordersUC.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.getCalls)
}

func TestTransitionOptions_RendersPolicyOutput(t *testing.T) {
	store := newFakeStore(&domain.Order{
		ID:            "o2",
		OrderStatus:   domain.OrderStatusShipped,
		PaymentMethod: "cod",
		PaymentStatus: domain.PaymentStatusUnpaid,
	})
	ordersUC := NewOrdersUsecase(store, infracache.NewMemoryCache(time.Minute, time.Minute), testConfig())

	opts, err := ordersUC.TransitionOptions(context.Background(), "o2")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusShipped, opts.Current)
	assert.False(t, opts.Terminal)
	require.Equal(t, []TransitionOption{
		{Status: domain.OrderStatusShipped, RequiresPayment: false},
		{Status: domain.OrderStatusDelivered, RequiresPayment: true},
		{Status: domain.OrderStatusCancelled, RequiresPayment: false},
	}, opts.Next)
	assert.Equal(t, domain.PaymentStatuses, opts.PaymentOptions)
}

func TestTransitionOptions_TerminalOrder(t *testing.T) {
	store := newFakeStore(&domain.Order{
		ID:            "o4",
		OrderStatus:   domain.OrderStatusCancelled,
		PaymentMethod: "card",
	})
	ordersUC := NewOrdersUsecase(store, infracache.NewMemoryCache(time.Minute, time.Minute), testConfig())

	opts, err := ordersUC.TransitionOptions(context.Background(), "o4")
	require.NoError(t, err)

	assert.True(t, opts.Terminal)
	assert.Equal(t, []TransitionOption{{Status: domain.OrderStatusCancelled}}, opts.Next)
	assert.Empty(t, opts.PaymentOptions)
}

// After an applied transition every view must re-fetch and agree on the new
// state: the single-order view, the list pages, and the status counters.
func TestTransition_PropagatesToAllViews(t *testing.T) {
	store := newFakeStore(&domain.Order{
		ID:            "o1",
		OrderStatus:   domain.OrderStatusPending,
		PaymentMethod: "card",
	})
	memCache := infracache.NewMemoryCache(time.Minute, time.Minute)
	cfg := testConfig()

	ordersUC := NewOrdersUsecase(store, memCache, cfg)
	statsUC := NewStatsUsecase(store, memCache, cfg)
	gateway := NewFulfillmentUsecase(store, &fakeHistory{}, ordersUC)

	ctx := context.Background()

	// Warm every view.
	_, err := ordersUC.GetOrder(ctx, "o1")
	require.NoError(t, err)
	_, err = ordersUC.ListOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	_, err = statsUC.GetOrderStatusCounts(ctx)
	require.NoError(t, err)

	listCallsBefore := store.listCalls

	applied, err := gateway.RequestTransition(ctx, TransitionRequest{
		OrderID:      "o1",
		TargetStatus: domain.OrderStatusProcessing,
	})
	require.NoError(t, err)
	require.True(t, applied.Changed)

	order, err := ordersUC.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, order.OrderStatus)

	page, err := ordersUC.ListOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, domain.OrderStatusProcessing, page.Orders[0].OrderStatus)
	assert.Greater(t, store.listCalls, listCallsBefore)

	counts, err := statsUC.GetOrderStatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Counts[domain.OrderStatusProcessing])
	assert.Equal(t, int64(0), counts.Counts[domain.OrderStatusPending])
}

func TestTransition_CODDeliveryVisibleEverywhere(t *testing.T) {
	store := newFakeStore(&domain.Order{
		ID:            "o2",
		OrderStatus:   domain.OrderStatusShipped,
		PaymentMethod: "cod",
		PaymentStatus: domain.PaymentStatusUnpaid,
	})
	memCache := infracache.NewMemoryCache(time.Minute, time.Minute)
	cfg := testConfig()

	ordersUC := NewOrdersUsecase(store, memCache, cfg)
	gateway := NewFulfillmentUsecase(store, &fakeHistory{}, ordersUC)

	ctx := context.Background()
	_, err := ordersUC.GetOrder(ctx, "o2")
	require.NoError(t, err)

	paid := domain.PaymentStatusPaid
	applied, err := gateway.RequestTransition(ctx, TransitionRequest{
		OrderID:       "o2",
		TargetStatus:  domain.OrderStatusDelivered,
		TargetPayment: &paid,
	})
	require.NoError(t, err)
	require.NotNil(t, applied.PaymentStatus)

	order, err := ordersUC.GetOrder(ctx, "o2")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, order.OrderStatus)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
}

// A rejected transition must not disturb the cached views.
func TestTransition_RejectionLeavesViewsCached(t *testing.T) {
	store := newFakeStore(&domain.Order{
		ID:            "o1",
		OrderStatus:   domain.OrderStatusShipped,
		PaymentMethod: "card",
	})
	memCache := infracache.NewMemoryCache(time.Minute, time.Minute)
	cfg := testConfig()

	ordersUC := NewOrdersUsecase(store, memCache, cfg)
	gateway := NewFulfillmentUsecase(store, &fakeHistory{}, ordersUC)

	ctx := context.Background()
	_, err := ordersUC.ListOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	listCallsBefore := store.listCalls

	_, err = gateway.RequestTransition(ctx, TransitionRequest{
		OrderID:      "o1",
		TargetStatus: domain.OrderStatusPending,
	})
	var illegal *domain.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)

	_, err = ordersUC.ListOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, listCallsBefore, store.listCalls)
}
