package extraction

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/invoiceiq/invoiceiq/internal/platform/httpx"
)

// Handler exposes the document extraction endpoint.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	maxBytes int64
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = MaxFileSizeBytes
	}
	return &Handler{logger: logger, service: service, maxBytes: maxBytes}
}

// MountRoutes registers the extraction route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/extract", h.extract)
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.RespondError(w, httpx.ErrPayloadTooLarge)
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.RespondError(w, httpx.ErrPayloadTooLarge)
			return
		}
		h.logger.Error("read upload", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), content)
	if !supportedContentType(contentType) {
		httpx.RespondError(w, httpx.ErrUnsupportedMedia)
		return
	}

	uploadRef := uuid.NewString()
	h.logger.Info("extract upload",
		slog.String("upload_ref", uploadRef),
		slog.String("filename", header.Filename),
		slog.String("content_type", contentType),
		slog.Int("bytes", len(content)))

	result, invoiceID, err := h.service.Extract(r.Context(), content, contentType)
	if err != nil {
		h.logger.Error("extract", slog.String("upload_ref", uploadRef), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("extract stored",
		slog.String("upload_ref", uploadRef),
		slog.Int64("invoice_id", invoiceID),
		slog.String("invoice_no", result.InvoiceNo))
	httpx.JSON(w, http.StatusOK, result)
}

func detectContentType(declared string, content []byte) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if declared != "" && declared != "application/octet-stream" {
		if mediaType, _, found := strings.Cut(declared, ";"); found {
			return strings.TrimSpace(mediaType)
		}
		return declared
	}
	return http.DetectContentType(content)
}

func supportedContentType(contentType string) bool {
	if strings.HasPrefix(contentType, "image/") {
		return true
	}
	return strings.Contains(contentType, "pdf")
}
