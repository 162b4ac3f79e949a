package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	monthlyCalls int
	skuCalls     int
	taxCalls     int
}

func (s *stubRepo) MonthlyTotals(context.Context, Filter) ([]SeriesPoint, error) {
	s.monthlyCalls++
	return []SeriesPoint{{Label: "2025-01", Value: 1180}, {Label: "2025-02", Value: 590}}, nil
}

func (s *stubRepo) TopSKUs(context.Context, Filter, int) ([]TopSKU, error) {
	s.skuCalls++
	return []TopSKU{{SKU: "SKU-DEMO", TotalQty: 10, Revenue: 1180}}, nil
}

func (s *stubRepo) TaxBreakdown(context.Context, Filter) ([]TaxBreakdownPoint, error) {
	s.taxCalls++
	return []TaxBreakdownPoint{{TaxRate: 18, TaxAmount: 180}}, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestGetSummaryAggregates(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil)

	summary, err := svc.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, summary.MonthlyTotals, 2)
	require.Len(t, summary.TopSKUs, 1)
	require.Len(t, summary.TaxBreakdown, 1)
	require.Nil(t, summary.DateRange.From)
	require.Nil(t, summary.DateRange.To)
}

func TestGetSummaryUsesCache(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t))

	_, err := svc.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, repo.monthlyCalls)

	_, err = svc.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, repo.monthlyCalls)
	require.Equal(t, 1, repo.skuCalls)
	require.Equal(t, 1, repo.taxCalls)
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t))

	_, err := svc.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, repo.monthlyCalls)
}

func TestSummaryServedWhenCacheUnreachable(t *testing.T) {
	repo := &stubRepo{}
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(repo, NewCache(client, time.Minute))

	srv.Close()

	summary, err := svc.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, summary.MonthlyTotals, 2)
	require.Equal(t, 1, repo.monthlyCalls)
}

func TestFilterChangesCacheKey(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t))

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	summary, err := svc.GetSummary(context.Background(), Filter{From: &from, To: &to})
	require.NoError(t, err)
	require.Equal(t, 2, repo.monthlyCalls)
	require.Equal(t, "2025-01-01", *summary.DateRange.From)
	require.Equal(t, "2025-03-31", *summary.DateRange.To)
}
