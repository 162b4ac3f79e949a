package extraction

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/invoiceiq/invoiceiq/internal/invoices"
	"github.com/invoiceiq/invoiceiq/internal/vendors"
)

// MetricsRecorder counts extraction runs per engine and outcome.
type MetricsRecorder interface {
	ObserveExtraction(engine, outcome string)
}

// Service runs the OCR engine over an upload and stores the result as a
// PENDING invoice.
type Service struct {
	logger   *slog.Logger
	engine   Engine
	invoices *invoices.Service
	vendors  *vendors.Service
	metrics  MetricsRecorder
	now      func() time.Time
}

// NewService wires the extraction service. The engine may be nil; every
// upload then resolves through the deterministic fallback.
func NewService(logger *slog.Logger, engine Engine, invoiceSvc *invoices.Service, vendorSvc *vendors.Service, metrics MetricsRecorder) *Service {
	return &Service{
		logger:   logger,
		engine:   engine,
		invoices: invoiceSvc,
		vendors:  vendorSvc,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Extract runs OCR on the document, parses the text and persists a new
// PENDING invoice. The extraction result is returned alongside the id of
// the stored invoice.
func (s *Service) Extract(ctx context.Context, content []byte, contentType string) (Result, int64, error) {
	result := s.run(ctx, content, contentType)

	invoiceDate, err := time.Parse("2006-01-02", result.InvoiceDate)
	if err != nil {
		invoiceDate = s.now().UTC()
	}

	var vendorID *int64
	if result.SupplierGSTIN != nil && s.vendors != nil {
		name := ""
		if result.SupplierName != nil {
			name = *result.SupplierName
		}
		vendor, err := s.vendors.Resolve(ctx, name, *result.SupplierGSTIN)
		if err != nil {
			s.logger.Warn("resolve vendor", slog.Any("error", err))
		} else if vendor != nil {
			vendorID = &vendor.ID
		}
	}

	input := invoices.CreateInvoiceInput{
		VendorID:      vendorID,
		SupplierName:  result.SupplierName,
		SupplierGSTIN: result.SupplierGSTIN,
		InvoiceNo:     result.InvoiceNo,
		InvoiceDate:   invoiceDate,
		Subtotal:      result.Subtotal,
		Tax:           result.Tax,
		Total:         result.Total,
		Status:        invoices.StatusPending,
		Items:         toItemInputs(result.Items),
	}

	stored, err := s.invoices.Create(ctx, input)
	if err != nil {
		return Result{}, 0, err
	}
	return result, stored.ID, nil
}

// run executes the engine and falls back to the stub when the engine is
// absent, errors out or returns no text.
func (s *Service) run(ctx context.Context, content []byte, contentType string) Result {
	now := s.now()
	if s.engine == nil {
		s.observe("none", "fallback")
		return Fallback(now)
	}

	text, err := s.engine.ExtractText(ctx, content, contentType)
	if err != nil {
		s.logger.Warn("ocr engine", slog.String("engine", s.engine.Name()), slog.Any("error", err))
		s.observe(s.engine.Name(), "fallback")
		return Fallback(now)
	}
	if strings.TrimSpace(text) == "" {
		s.logger.Warn("ocr engine returned no text", slog.String("engine", s.engine.Name()))
		s.observe(s.engine.Name(), "fallback")
		return Fallback(now)
	}

	s.observe(s.engine.Name(), "ok")
	return ParseText(text, now)
}

func (s *Service) observe(engine, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveExtraction(engine, outcome)
	}
}

func toItemInputs(items []ResultItem) []invoices.ItemInput {
	inputs := make([]invoices.ItemInput, 0, len(items))
	for _, item := range items {
		rate := item.TaxRate
		inputs = append(inputs, invoices.ItemInput{
			SKU:         item.SKU,
			Description: item.Description,
			Qty:         item.Qty,
			UnitPrice:   item.UnitPrice,
			TaxRate:     &rate,
			LineTotal:   item.LineTotal,
		})
	}
	return inputs
}
