package vendors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/invoiceiq/invoiceiq/internal/platform/httpx"
)

// Handler exposes vendor endpoints.
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

// MountRoutes registers vendor routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/vendors", h.listVendors)
	r.Post("/vendors", h.createVendor)
}

type createVendorPayload struct {
	Name      string   `json:"name" validate:"required"`
	GSTIN     *string  `json:"gstin"`
	Rating    *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	RiskScore *float64 `json:"risk_score" validate:"omitempty,gte=0,lte=100"`
}

type vendorView struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	GSTIN     *string  `json:"gstin"`
	Rating    *float64 `json:"rating"`
	RiskScore *float64 `json:"risk_score"`
	CreatedAt string   `json:"created_at"`
}

func newVendorView(v Vendor) vendorView {
	return vendorView{
		ID:        v.ID,
		Name:      v.Name,
		GSTIN:     v.GSTIN,
		Rating:    v.Rating,
		RiskScore: v.RiskScore,
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list vendors", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]vendorView, 0, len(all))
	for _, v := range all {
		views = append(views, newVendorView(v))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vendors": views})
}

func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	var payload createVendorPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	vendor, err := h.service.Create(r.Context(), CreateVendorInput{
		Name:      payload.Name,
		GSTIN:     payload.GSTIN,
		Rating:    payload.Rating,
		RiskScore: payload.RiskScore,
	})
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusCreated, newVendorView(vendor))
	case err == ErrMissingName || err == ErrInvalidGSTIN:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("create vendor", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
