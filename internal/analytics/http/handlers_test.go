package analytichttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/invoiceiq/invoiceiq/internal/analytics"
	"github.com/invoiceiq/invoiceiq/internal/platform/httpx"
)

type summaryRepoStub struct {
	lastFilter analytics.Filter
}

func (s *summaryRepoStub) MonthlyTotals(_ context.Context, filter analytics.Filter) ([]analytics.SeriesPoint, error) {
	s.lastFilter = filter
	return []analytics.SeriesPoint{{Label: "2025-01", Value: 1180}}, nil
}

func (s *summaryRepoStub) TopSKUs(context.Context, analytics.Filter, int) ([]analytics.TopSKU, error) {
	return []analytics.TopSKU{{SKU: "SKU-1", TotalQty: 10, Revenue: 1000}}, nil
}

func (s *summaryRepoStub) TaxBreakdown(context.Context, analytics.Filter) ([]analytics.TaxBreakdownPoint, error) {
	return []analytics.TaxBreakdownPoint{{TaxRate: 18, TaxAmount: 180}}, nil
}

func newSummaryRouter(t *testing.T) (chi.Router, *summaryRepoStub) {
	t.Helper()
	repo := &summaryRepoStub{}
	svc := analytics.NewService(repo, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, svc).MountRoutes(r)
	return r, repo
}

func doGet(router chi.Router, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSummaryEndpointAppliesDateFilter(t *testing.T) {
	router, repo := newSummaryRouter(t)

	rec := doGet(router, "/analytics/summary?from_date=2025-01-01&to_date=2025-03-31")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary.MonthlyTotals, 1)
	require.Equal(t, "2025-01-01", *summary.DateRange.From)
	require.Equal(t, "2025-03-31", *summary.DateRange.To)
	require.NotNil(t, repo.lastFilter.From)
	require.NotNil(t, repo.lastFilter.To)
}

func TestSummaryEndpointRejectsMalformedDate(t *testing.T) {
	router, _ := newSummaryRouter(t)

	rec := doGet(router, "/analytics/summary?from_date=January")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Validation Failed", problem.Title)
	require.Contains(t, problem.Detail, "from_date")
}

func TestExportEndpointWritesCSVAttachment(t *testing.T) {
	router, _ := newSummaryRouter(t)

	rec := doGet(router, "/analytics/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="analytics-summary.csv"`, rec.Header().Get("Content-Disposition"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "Month,Total\n"))
	require.Contains(t, body, "2025-01,1,180.00")
}

func TestExportEndpointRejectsMalformedDate(t *testing.T) {
	router, _ := newSummaryRouter(t)

	rec := doGet(router, "/analytics/export.csv?to_date=31-03-2025")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
