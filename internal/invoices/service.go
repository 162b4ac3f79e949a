package invoices

import (
	"context"
	"errors"
	"time"

	"github.com/invoiceiq/invoiceiq/internal/shared"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrNoItems         = errors.New("at least one line item is required")
	ErrInvalidStatus   = errors.New("status must be PENDING or APPROVED")
	ErrMissingNumber   = errors.New("invoice number is required")
)

// ChangeRecorder is notified after any invoice mutation so dependent caches
// and background jobs can react.
type ChangeRecorder interface {
	InvoicesChanged(ctx context.Context)
}

// Service coordinates invoice persistence and review workflow.
type Service struct {
	repo     Repository
	recorder ChangeRecorder
}

// NewService wires the invoice service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetChangeRecorder injects the post-mutation hook.
func (s *Service) SetChangeRecorder(recorder ChangeRecorder) {
	s.recorder = recorder
}

// Create inserts a new invoice together with its line items.
func (s *Service) Create(ctx context.Context, input CreateInvoiceInput) (InvoiceWithItems, error) {
	if input.InvoiceNo == "" {
		return InvoiceWithItems{}, ErrMissingNumber
	}
	if len(input.Items) == 0 {
		return InvoiceWithItems{}, ErrNoItems
	}
	if input.Status == "" {
		input.Status = StatusPending
	}
	if input.InvoiceDate.IsZero() {
		input.InvoiceDate = time.Now().UTC()
	}

	var invoiceID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateInvoice(ctx, input)
		if err != nil {
			return err
		}
		invoiceID = id
		for _, item := range input.Items {
			if err := tx.CreateInvoiceItem(ctx, item, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return InvoiceWithItems{}, err
	}

	s.changed(ctx)
	return s.repo.GetInvoiceWithItems(ctx, invoiceID)
}

// List returns invoice summaries ordered by creation time, newest first.
func (s *Service) List(ctx context.Context, status InvoiceStatus, page, perPage int) ([]InvoiceSummary, shared.Pagination, error) {
	pagination := shared.NewPagination(page, perPage, 0)
	summaries, total, err := s.repo.ListInvoices(ctx, ListInvoicesRequest{
		Status: status,
		Limit:  pagination.PerPage,
		Offset: pagination.Offset(),
	})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return summaries, shared.NewPagination(pagination.Page, pagination.PerPage, total), nil
}

// GetDetail returns the invoice header with all line items.
func (s *Service) GetDetail(ctx context.Context, id int64) (InvoiceWithItems, error) {
	return s.repo.GetInvoiceWithItems(ctx, id)
}

// Update replaces the invoice header and line items in one transaction.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInvoiceInput) (InvoiceWithItems, error) {
	if input.InvoiceNo == "" {
		return InvoiceWithItems{}, ErrMissingNumber
	}
	if len(input.Items) == 0 {
		return InvoiceWithItems{}, ErrNoItems
	}
	if input.Status != StatusPending && input.Status != StatusApproved {
		return InvoiceWithItems{}, ErrInvalidStatus
	}
	if _, err := s.repo.GetInvoice(ctx, id); err != nil {
		return InvoiceWithItems{}, err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateInvoiceHeader(ctx, id, input); err != nil {
			return err
		}
		if err := tx.DeleteInvoiceItems(ctx, id); err != nil {
			return err
		}
		for _, item := range input.Items {
			if err := tx.CreateInvoiceItem(ctx, item, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return InvoiceWithItems{}, err
	}

	s.changed(ctx)
	return s.repo.GetInvoiceWithItems(ctx, id)
}

// Approve marks an invoice APPROVED. Approving twice is a no-op.
func (s *Service) Approve(ctx context.Context, id int64) (InvoiceWithItems, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return InvoiceWithItems{}, err
	}
	if inv.Status != StatusApproved {
		err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.UpdateInvoiceStatus(ctx, id, StatusApproved)
		})
		if err != nil {
			return InvoiceWithItems{}, err
		}
		s.changed(ctx)
	}
	return s.repo.GetInvoiceWithItems(ctx, id)
}

// Recalculate rebuilds subtotal/tax/total from the stored line items.
// Header totals are otherwise free-floating; this is the explicit sync point.
func (s *Service) Recalculate(ctx context.Context, id int64) (InvoiceWithItems, error) {
	detail, err := s.repo.GetInvoiceWithItems(ctx, id)
	if err != nil {
		return InvoiceWithItems{}, err
	}

	subtotal, tax, total := Totals(detail.Items)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateInvoiceTotals(ctx, id, subtotal, tax, total)
	})
	if err != nil {
		return InvoiceWithItems{}, err
	}

	s.changed(ctx)
	return s.repo.GetInvoiceWithItems(ctx, id)
}

// Delete removes the invoice; items cascade at the database level.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var deleted bool
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ok, err := tx.DeleteInvoice(ctx, id)
		deleted = ok
		return err
	})
	if err != nil {
		return err
	}
	if !deleted {
		return ErrInvoiceNotFound
	}
	s.changed(ctx)
	return nil
}

func (s *Service) changed(ctx context.Context) {
	if s.recorder != nil {
		s.recorder.InvoicesChanged(ctx)
	}
}
