package invoices

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/invoiceiq/invoiceiq/internal/platform/httpx"
)

func newHandlerRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	svc := NewService(newMemoryRepo())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, svc).MountRoutes(r)
	return r, svc
}

func doJSON(router chi.Router, method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func requireProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, title string) httpx.ProblemDetail {
	t.Helper()
	require.Equal(t, status, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, title, problem.Title)
	require.Equal(t, status, problem.Status)
	return problem
}

func TestHandlerGetMissingInvoice(t *testing.T) {
	router, _ := newHandlerRouter(t)

	rec := doJSON(router, http.MethodGet, "/invoices/99", nil)
	requireProblem(t, rec, http.StatusNotFound, "Not Found")
}

func TestHandlerUpdateRequiresItems(t *testing.T) {
	router, svc := newHandlerRouter(t)
	detail := seedInvoice(t, svc)

	rec := doJSON(router, http.MethodPut, "/invoices/1", map[string]any{
		"invoice_no": detail.InvoiceNo,
		"status":     "PENDING",
		"items":      []any{},
	})
	requireProblem(t, rec, http.StatusBadRequest, "Validation Failed")
}

func TestHandlerUpdateRejectsBadStatus(t *testing.T) {
	router, svc := newHandlerRouter(t)
	detail := seedInvoice(t, svc)

	rec := doJSON(router, http.MethodPut, "/invoices/1", map[string]any{
		"invoice_no": detail.InvoiceNo,
		"status":     "REJECTED",
		"items": []map[string]any{
			{"sku": "SKU-1", "qty": 1, "unit_price": 1, "line_total": 1},
		},
	})
	problem := requireProblem(t, rec, http.StatusBadRequest, "Validation Failed")
	require.Equal(t, ErrInvalidStatus.Error(), problem.Detail)
}

func TestHandlerListRejectsBadStatusFilter(t *testing.T) {
	router, _ := newHandlerRouter(t)

	rec := doJSON(router, http.MethodGet, "/invoices?status=REJECTED", nil)
	requireProblem(t, rec, http.StatusBadRequest, "Validation Failed")
}

func TestHandlerApproveFlow(t *testing.T) {
	router, svc := newHandlerRouter(t)
	detail := seedInvoice(t, svc)

	rec := doJSON(router, http.MethodPost, "/invoices/1/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view DetailView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, detail.ID, view.ID)
	require.Equal(t, string(StatusApproved), view.Status)
}

func TestHandlerDeleteInvoice(t *testing.T) {
	router, svc := newHandlerRouter(t)
	_ = seedInvoice(t, svc)

	rec := doJSON(router, http.MethodDelete, "/invoices/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := svc.GetDetail(context.Background(), 1)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}
