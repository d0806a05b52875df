package dashboard

import (
	"context"
	"time"

	"item_catalog/internal/apperror"
	"item_catalog/internal/observability"
)

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type DashboardServiceInterface interface {
	ItemCount(ctx context.Context) (int64, error)
}

type DashboardService struct {
	items   Counter
	metrics *observability.Metrics
}

func NewDashboardService(items Counter, metrics *observability.Metrics) DashboardServiceInterface {
	return &DashboardService{items: items, metrics: metrics}
}

// ItemCount always asks the store; the item cache is never consulted.
func (s *DashboardService) ItemCount(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.items.Count(ctx)
	s.metrics.ObserveStore("items.count", time.Since(start).Seconds())
	if err != nil {
		return 0, apperror.Store("Error counting items", err)
	}
	return n, nil
}
