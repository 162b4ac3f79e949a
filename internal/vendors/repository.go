package vendors

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines vendor data access.
type Repository interface {
	Create(ctx context.Context, input CreateVendorInput) (Vendor, error)
	GetByGSTIN(ctx context.Context, gstin string) (Vendor, error)
	UpsertByGSTIN(ctx context.Context, name, gstin string) (Vendor, error)
	List(ctx context.Context) ([]Vendor, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the PostgreSQL-backed vendor repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const vendorColumns = `id, name, gstin, rating, risk_score, created_at`

func (r *pgRepository) Create(ctx context.Context, input CreateVendorInput) (Vendor, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO vendors (name, gstin, rating, risk_score)
		VALUES ($1, $2, $3, $4)
		RETURNING `+vendorColumns,
		input.Name, textOrNull(input.GSTIN), numericOrNull(input.Rating), numericOrNull(input.RiskScore))
	return scanVendor(row)
}

func (r *pgRepository) GetByGSTIN(ctx context.Context, gstin string) (Vendor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE gstin = $1`, gstin)
	v, err := scanVendor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vendor{}, ErrVendorNotFound
	}
	return v, err
}

// UpsertByGSTIN inserts the vendor or, when the GSTIN already exists, refreshes
// the name and returns the existing row.
func (r *pgRepository) UpsertByGSTIN(ctx context.Context, name, gstin string) (Vendor, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO vendors (name, gstin)
		VALUES ($1, $2)
		ON CONFLICT (gstin) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+vendorColumns,
		name, gstin)
	return scanVendor(row)
}

func (r *pgRepository) List(ctx context.Context) ([]Vendor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type vendorRow interface {
	Scan(dest ...any) error
}

func scanVendor(row vendorRow) (Vendor, error) {
	var (
		v       Vendor
		gstin   pgtype.Text
		rating  pgtype.Numeric
		risk    pgtype.Numeric
		created pgtype.Timestamptz
	)
	if err := row.Scan(&v.ID, &v.Name, &gstin, &rating, &risk, &created); err != nil {
		return Vendor{}, err
	}
	if gstin.Valid {
		s := gstin.String
		v.GSTIN = &s
	}
	v.Rating = floatPtr(rating)
	v.RiskScore = floatPtr(risk)
	if created.Valid {
		v.CreatedAt = created.Time
	}
	return v, nil
}

func floatPtr(n pgtype.Numeric) *float64 {
	if !n.Valid {
		return nil
	}
	f, _ := n.Float64Value()
	return &f.Float64
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func numericOrNull(f *float64) pgtype.Numeric {
	if f == nil {
		return pgtype.Numeric{}
	}
	var n pgtype.Numeric
	_ = n.Scan(strconv.FormatFloat(*f, 'f', 4, 64))
	return n
}
