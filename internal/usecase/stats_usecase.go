package usecase

import (
	"context"

	"orderdesk-backend/config"
	"orderdesk-backend/internal/domain"
	"orderdesk-backend/pkg/cache"
)

// StatsUsecase computes the dashboard's per-status order counters. The counts
// are derived purely from the order list operation so no extra upstream
// endpoint is needed; the cached result is invalidated by the propagator after
// every applied transition.
type StatsUsecase struct {
	store domain.OrderStore
	cache cache.CacheService
	cfg   *config.Config
}

func NewStatsUsecase(store domain.OrderStore, cacheService cache.CacheService, cfg *config.Config) *StatsUsecase {
	return &StatsUsecase{
		store: store,
		cache: cacheService,
		cfg:   cfg,
	}
}

type OrderStatusCounts struct {
	Total  int64                        `json:"total"`
	Counts map[domain.OrderStatus]int64 `json:"counts"`
}

func (u *StatsUsecase) GetOrderStatusCounts(ctx context.Context) (*OrderStatusCounts, error) {
	if val, found := u.cache.Get(cacheKeyStatusCounts); found {
		return val.(*OrderStatusCounts), nil
	}

	counts := make(map[domain.OrderStatus]int64, len(domain.OrderStatuses))
	var total int64

	// One page-size-1 query per status; only the total matters.
	for _, status := range domain.OrderStatuses {
		page, err := u.store.List(ctx, domain.OrderFilter{
			Page:     1,
			PageSize: 1,
			Status:   string(status),
		})
		if err != nil {
			return nil, err
		}
		counts[status] = page.Total
		total += page.Total
	}

	result := &OrderStatusCounts{Total: total, Counts: counts}
	u.cache.Set(cacheKeyStatusCounts, result, u.cfg.CacheStatsTTL)
	return result, nil
}
