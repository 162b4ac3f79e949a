package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Service coordinates analytics query execution with the cache layer.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// GetSummary resolves the dashboard aggregate using cache-aware lookups.
// The three aggregation queries run concurrently on a cache miss.
func (s *Service) GetSummary(ctx context.Context, filter Filter) (Summary, error) {
	loader := func(ctx context.Context) (any, error) {
		summary := Summary{DateRange: filter.dateRange()}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			points, err := s.repo.MonthlyTotals(gctx, filter)
			if err != nil {
				return err
			}
			summary.MonthlyTotals = points
			return nil
		})
		g.Go(func() error {
			skus, err := s.repo.TopSKUs(gctx, filter, TopSKULimit)
			if err != nil {
				return err
			}
			summary.TopSKUs = skus
			return nil
		})
		g.Go(func() error {
			taxes, err := s.repo.TaxBreakdown(gctx, filter)
			if err != nil {
				return err
			}
			summary.TaxBreakdown = taxes
			return nil
		})
		if err := g.Wait(); err != nil {
			return Summary{}, err
		}
		return summary, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Summary{}, err
		}
		return value.(Summary), nil
	}

	key, err := s.cache.BuildKey(ctx, keySummary(filter))
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return Summary{}, err
	}
	summary.DateRange = filter.dateRange()
	return summary, nil
}

// Invalidate bumps the cache version after invoice mutations.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
