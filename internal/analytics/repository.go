package analytics

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TopSKULimit caps the SKU ranking.
const TopSKULimit = 5

// Repository exposes the aggregation queries the dashboard relies on.
type Repository interface {
	MonthlyTotals(ctx context.Context, filter Filter) ([]SeriesPoint, error)
	TopSKUs(ctx context.Context, filter Filter, limit int) ([]TopSKU, error)
	TaxBreakdown(ctx context.Context, filter Filter) ([]TaxBreakdownPoint, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the PostgreSQL-backed analytics repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) MonthlyTotals(ctx context.Context, filter Filter) ([]SeriesPoint, error) {
	where, args := filterClause(filter)
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(invoice_date, 'YYYY-MM') AS bucket, SUM(total) AS total
		FROM invoices
		WHERE `+where+`
		GROUP BY bucket
		ORDER BY bucket`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []SeriesPoint
	for rows.Next() {
		var (
			bucket pgtype.Text
			total  pgtype.Numeric
		)
		if err := rows.Scan(&bucket, &total); err != nil {
			return nil, err
		}
		if !bucket.Valid {
			continue
		}
		points = append(points, SeriesPoint{Label: bucket.String, Value: numericFloat(total)})
	}
	return points, rows.Err()
}

func (r *pgRepository) TopSKUs(ctx context.Context, filter Filter, limit int) ([]TopSKU, error) {
	if limit <= 0 {
		limit = TopSKULimit
	}
	where, args := filterClause(filter)
	args = append(args, limit)
	rows, err := r.pool.Query(ctx, `
		SELECT ii.sku AS sku,
		       SUM(ii.qty) AS total_qty,
		       SUM(ii.line_total) AS revenue
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE `+where+`
		GROUP BY ii.sku
		ORDER BY revenue DESC
		LIMIT $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skus []TopSKU
	for rows.Next() {
		var (
			sku     pgtype.Text
			qty     pgtype.Numeric
			revenue pgtype.Numeric
		)
		if err := rows.Scan(&sku, &qty, &revenue); err != nil {
			return nil, err
		}
		label := "UNLABELED"
		if sku.Valid && sku.String != "" {
			label = sku.String
		}
		skus = append(skus, TopSKU{SKU: label, TotalQty: numericFloat(qty), Revenue: numericFloat(revenue)})
	}
	return skus, rows.Err()
}

func (r *pgRepository) TaxBreakdown(ctx context.Context, filter Filter) ([]TaxBreakdownPoint, error) {
	where, args := filterClause(filter)
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(ii.tax_rate, 0) AS tax_rate,
		       SUM(ii.qty * ii.unit_price * (COALESCE(ii.tax_rate, 0) / 100.0)) AS tax_amount
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE `+where+`
		GROUP BY COALESCE(ii.tax_rate, 0)
		ORDER BY tax_rate`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []TaxBreakdownPoint
	for rows.Next() {
		var rate, amount pgtype.Numeric
		if err := rows.Scan(&rate, &amount); err != nil {
			return nil, err
		}
		points = append(points, TaxBreakdownPoint{TaxRate: numericFloat(rate), TaxAmount: numericFloat(amount)})
	}
	return points, rows.Err()
}

// filterClause renders the invoice_date bounds. Only invoices carries
// that column, so the same clause works for the joined item queries.
func filterClause(filter Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, "invoice_date >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, "invoice_date <= $"+strconv.Itoa(len(args)))
	}
	if len(clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(clauses, " AND "), args
}

func numericFloat(n pgtype.Numeric) float64 {
	if !n.Valid {
		return 0
	}
	f, _ := n.Float64Value()
	return f.Float64
}
