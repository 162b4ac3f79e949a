package invoices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines invoice data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	GetInvoiceWithItems(ctx context.Context, id int64) (InvoiceWithItems, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]InvoiceSummary, int, error)
}

// TxRepository defines operations within a transaction.
type TxRepository interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (int64, error)
	CreateInvoiceItem(ctx context.Context, input ItemInput, invoiceID int64) error
	UpdateInvoiceHeader(ctx context.Context, id int64, input UpdateInvoiceInput) error
	UpdateInvoiceTotals(ctx context.Context, id int64, subtotal, tax, total float64) error
	UpdateInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error
	DeleteInvoiceItems(ctx context.Context, invoiceID int64) error
	DeleteInvoice(ctx context.Context, id int64) (bool, error)
}

// Ensure implementation
var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	txRepo := &pgTxRepository{tx: tx}
	if err := fn(ctx, txRepo); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const invoiceColumns = `id, vendor_id, supplier_name, supplier_gstin, invoice_no, invoice_date,
       subtotal, tax, total, status, created_at`

func (r *pgRepository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}

func (r *pgRepository) GetInvoiceWithItems(ctx context.Context, id int64) (InvoiceWithItems, error) {
	inv, err := r.GetInvoice(ctx, id)
	if err != nil {
		return InvoiceWithItems{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, sku, description, qty, unit_price, tax_rate, line_total
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id ASC`, id)
	if err != nil {
		return InvoiceWithItems{}, err
	}
	defer rows.Close()

	var items []InvoiceItem
	for rows.Next() {
		var (
			item     InvoiceItem
			sku      pgtype.Text
			desc     pgtype.Text
			qty      pgtype.Numeric
			price    pgtype.Numeric
			rate     pgtype.Numeric
			lineTot  pgtype.Numeric
		)
		if err := rows.Scan(&item.ID, &item.InvoiceID, &sku, &desc, &qty, &price, &rate, &lineTot); err != nil {
			return InvoiceWithItems{}, err
		}
		item.SKU = toStrPtr(sku)
		item.Description = toStrPtr(desc)
		item.Qty = numericToFloat(qty)
		item.UnitPrice = numericToFloat(price)
		if rate.Valid {
			v := numericToFloat(rate)
			item.TaxRate = &v
		}
		item.LineTotal = numericToFloat(lineTot)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return InvoiceWithItems{}, err
	}

	return InvoiceWithItems{Invoice: inv, Items: items}, nil
}

func (r *pgRepository) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]InvoiceSummary, int, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM invoices`
	args := []any{}
	where := ``
	if req.Status != "" {
		where = ` WHERE status = $1`
		args = append(args, string(req.Status))
	}
	if err := r.pool.QueryRow(ctx, countQuery+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append([]any{}, args...)
	listArgs = append(listArgs, limit, req.Offset)
	n := len(args)
	query := `
		SELECT id, supplier_name, invoice_no, total, status, created_at
		FROM invoices` + where + `
		ORDER BY created_at DESC
		LIMIT $` + itoa(n+1) + ` OFFSET $` + itoa(n+2)

	rows, err := r.pool.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var summaries []InvoiceSummary
	for rows.Next() {
		var (
			s       InvoiceSummary
			name    pgtype.Text
			totalN  pgtype.Numeric
			status  string
			created pgtype.Timestamptz
		)
		if err := rows.Scan(&s.ID, &name, &s.InvoiceNo, &totalN, &status, &created); err != nil {
			return nil, 0, err
		}
		s.SupplierName = toStrPtr(name)
		s.Total = numericToFloat(totalN)
		s.Status = InvoiceStatus(status)
		s.CreatedAt = safeTime(created)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// Transaction repository implementation.

type pgTxRepository struct {
	tx pgx.Tx
}

func (t *pgTxRepository) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO invoices (vendor_id, supplier_name, supplier_gstin, invoice_no, invoice_date,
		                      subtotal, tax, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		toNullInt64(input.VendorID),
		toText(input.SupplierName),
		toText(input.SupplierGSTIN),
		input.InvoiceNo,
		timeToDate(input.InvoiceDate),
		floatToNumeric(input.Subtotal),
		floatToNumeric(input.Tax),
		floatToNumeric(input.Total),
		string(input.Status),
	).Scan(&id)
	return id, err
}

func (t *pgTxRepository) CreateInvoiceItem(ctx context.Context, input ItemInput, invoiceID int64) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO invoice_items (invoice_id, sku, description, qty, unit_price, tax_rate, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		invoiceID,
		toText(input.SKU),
		toText(input.Description),
		floatToNumeric(input.Qty),
		floatToNumeric(input.UnitPrice),
		toNullNumeric(input.TaxRate),
		floatToNumeric(input.LineTotal),
	)
	return err
}

func (t *pgTxRepository) UpdateInvoiceHeader(ctx context.Context, id int64, input UpdateInvoiceInput) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE invoices
		SET supplier_name = $2,
		    supplier_gstin = $3,
		    invoice_no = $4,
		    invoice_date = $5,
		    subtotal = $6,
		    tax = $7,
		    total = $8,
		    status = $9
		WHERE id = $1`,
		id,
		toText(input.SupplierName),
		toText(input.SupplierGSTIN),
		input.InvoiceNo,
		toNullDate(input.InvoiceDate),
		floatToNumeric(input.Subtotal),
		floatToNumeric(input.Tax),
		floatToNumeric(input.Total),
		string(input.Status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (t *pgTxRepository) UpdateInvoiceTotals(ctx context.Context, id int64, subtotal, tax, total float64) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE invoices SET subtotal = $2, tax = $3, total = $4 WHERE id = $1`,
		id, floatToNumeric(subtotal), floatToNumeric(tax), floatToNumeric(total))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (t *pgTxRepository) UpdateInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE invoices SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (t *pgTxRepository) DeleteInvoiceItems(ctx context.Context, invoiceID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID)
	return err
}

func (t *pgTxRepository) DeleteInvoice(ctx context.Context, id int64) (bool, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Helpers

type invoiceRow interface {
	Scan(dest ...any) error
}

func scanInvoice(row invoiceRow) (Invoice, error) {
	var (
		inv      Invoice
		vendorID pgtype.Int8
		name     pgtype.Text
		gstin    pgtype.Text
		date     pgtype.Date
		subtotal pgtype.Numeric
		tax      pgtype.Numeric
		total    pgtype.Numeric
		status   string
		created  pgtype.Timestamptz
	)
	err := row.Scan(&inv.ID, &vendorID, &name, &gstin, &inv.InvoiceNo, &date,
		&subtotal, &tax, &total, &status, &created)
	if err != nil {
		return Invoice{}, err
	}
	inv.VendorID = toInt64Ptr(vendorID)
	inv.SupplierName = toStrPtr(name)
	inv.SupplierGSTIN = toStrPtr(gstin)
	if date.Valid {
		d := date.Time
		inv.InvoiceDate = &d
	}
	inv.Subtotal = numericToFloat(subtotal)
	inv.Tax = numericToFloat(tax)
	inv.Total = numericToFloat(total)
	inv.Status = InvoiceStatus(status)
	inv.CreatedAt = safeTime(created)
	return inv, nil
}
