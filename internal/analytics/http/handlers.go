// Package analytichttp exposes the analytics endpoints.
package analytichttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/invoiceiq/invoiceiq/internal/analytics"
	"github.com/invoiceiq/invoiceiq/internal/analytics/export"
	"github.com/invoiceiq/invoiceiq/internal/platform/httpx"
)

// Handler serves analytics summaries and exports.
type Handler struct {
	logger  *slog.Logger
	service *analytics.Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *analytics.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	summary, err := h.service.GetSummary(r.Context(), filter)
	if err != nil {
		h.logger.Error("analytics summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	summary, err := h.service.GetSummary(r.Context(), filter)
	if err != nil {
		h.logger.Error("analytics export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="analytics-summary.csv"`)
	if err := export.WriteSummaryCSV(w, summary); err != nil {
		h.logger.Error("write csv", slog.Any("error", err))
	}
}

func parseFilter(r *http.Request) (analytics.Filter, error) {
	var filter analytics.Filter
	query := r.URL.Query()

	if raw := query.Get("from_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return analytics.Filter{}, errInvalidDate("from_date")
		}
		filter.From = &t
	}
	if raw := query.Get("to_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return analytics.Filter{}, errInvalidDate("to_date")
		}
		filter.To = &t
	}
	return filter, nil
}

type errInvalidDate string

func (e errInvalidDate) Error() string {
	return string(e) + " must be YYYY-MM-DD"
}
