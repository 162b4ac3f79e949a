package invoices

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/invoiceiq/invoiceiq/internal/platform/httpx"
	"github.com/invoiceiq/invoiceiq/internal/shared"
)

// Handler exposes invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.listInvoices)
	r.Get("/invoices/{id}", h.getInvoice)
	r.Put("/invoices/{id}", h.updateInvoice)
	r.Post("/invoices/{id}/approve", h.approveInvoice)
	r.Post("/invoices/{id}/recalculate", h.recalculateInvoice)
	r.Delete("/invoices/{id}", h.deleteInvoice)
}

type itemPayload struct {
	SKU         *string `json:"sku"`
	Description *string `json:"description"`
	Qty         float64 `json:"qty" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	TaxRate     float64 `json:"tax_rate" validate:"gte=0,lte=100"`
	LineTotal   float64 `json:"line_total" validate:"gte=0"`
}

type updateInvoicePayload struct {
	SupplierName  *string       `json:"supplier_name"`
	SupplierGSTIN *string       `json:"supplier_gstin"`
	InvoiceNo     string        `json:"invoice_no" validate:"required"`
	InvoiceDate   *string       `json:"invoice_date"`
	Subtotal      float64       `json:"subtotal" validate:"gte=0"`
	Tax           float64       `json:"tax" validate:"gte=0"`
	Total         float64       `json:"total" validate:"gte=0"`
	Status        string        `json:"status"`
	Items         []itemPayload `json:"items" validate:"min=1,dive"`
}

type listInvoicesResponse struct {
	Invoices   []SummaryView     `json:"invoices"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var status InvoiceStatus
	if raw := query.Get("status"); raw != "" {
		normalized, ok := NormalizeStatus(raw)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "status must be PENDING or APPROVED")
			return
		}
		status = normalized
	}

	page, perPage := shared.PageParams(query, 50, 200)
	summaries, pagination, err := h.service.List(r.Context(), status, page, perPage)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	views := make([]SummaryView, 0, len(summaries))
	for _, summary := range summaries {
		views = append(views, NewSummaryView(summary))
	}
	httpx.JSON(w, http.StatusOK, listInvoicesResponse{Invoices: views, Pagination: pagination})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.invoiceID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewDetailView(detail))
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.invoiceID(w, r)
	if !ok {
		return
	}

	var payload updateInvoicePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	status, ok := NormalizeStatus(payload.Status)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", ErrInvalidStatus.Error())
		return
	}

	invoiceDate, err := parseDatePtr(payload.InvoiceDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invoice_date must be YYYY-MM-DD")
		return
	}

	input := UpdateInvoiceInput{
		SupplierName:  payload.SupplierName,
		SupplierGSTIN: payload.SupplierGSTIN,
		InvoiceNo:     payload.InvoiceNo,
		InvoiceDate:   invoiceDate,
		Subtotal:      payload.Subtotal,
		Tax:           payload.Tax,
		Total:         payload.Total,
		Status:        status,
		Items:         toItemInputs(payload.Items),
	}

	detail, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewDetailView(detail))
}

func (h *Handler) approveInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.invoiceID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Approve(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewDetailView(detail))
}

func (h *Handler) recalculateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.invoiceID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Recalculate(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewDetailView(detail))
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.invoiceID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invoiceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvoiceNotFound:
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case ErrNoItems, ErrInvalidStatus, ErrMissingNumber:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("invoice operation", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func toItemInputs(payloads []itemPayload) []ItemInput {
	inputs := make([]ItemInput, 0, len(payloads))
	for _, p := range payloads {
		rate := p.TaxRate
		inputs = append(inputs, ItemInput{
			SKU:         p.SKU,
			Description: p.Description,
			Qty:         p.Qty,
			UnitPrice:   p.UnitPrice,
			TaxRate:     &rate,
			LineTotal:   p.LineTotal,
		})
	}
	return inputs
}

func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
