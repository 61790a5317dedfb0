package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

type VendorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error)
	FindByIBAN(ctx context.Context, iban string) (*entity.Vendor, error)
	FindByNameCity(ctx context.Context, name, city string) (*entity.Vendor, error)
	Create(ctx context.Context, v *entity.Vendor) (*entity.Vendor, error)
	// Resolve matches by IBAN, then name and city, and creates the vendor when neither matches.
	Resolve(ctx context.Context, v *entity.Vendor) (*entity.Vendor, bool, error)
	List(ctx context.Context) ([]*entity.Vendor, error)
}

type vendorRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewVendorRepository(db *DB, logger *slog.Logger) VendorRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &vendorRepository{
		db:     db,
		logger: logger,
	}
}

var vendorColumns = []string{"id", "name", "street", "postal_code", "city", "iban", "bic", "created_at"}

func (r *vendorRepository) selectOne(ctx context.Context, c conn, preds ...*entsql.Predicate) (*entity.Vendor, error) {
	b := r.db.builder()
	q, args := b.Select(vendorColumns...).
		From(b.Table("vendors")).
		Where(entsql.And(preds...)).
		OrderBy("created_at").
		Limit(1).
		Query()
	v, err := scanVendor(c.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("vendor not found")
	}
	return v, err
}

func (r *vendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	v, err := r.selectOne(ctx, r.db, entsql.EQ("id", id.String()))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		r.logger.Error("failed to get vendor", "vendor_id", id, "error", err)
	}
	return v, err
}

func (r *vendorRepository) FindByIBAN(ctx context.Context, iban string) (*entity.Vendor, error) {
	v, err := r.selectOne(ctx, r.db, entsql.EQ("iban", iban))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		r.logger.Error("failed to find vendor by iban", "error", err)
	}
	return v, err
}

func (r *vendorRepository) FindByNameCity(ctx context.Context, name, city string) (*entity.Vendor, error) {
	v, err := r.selectOne(ctx, r.db, entsql.EQ("name", name), entsql.EQ("city", city))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		r.logger.Error("failed to find vendor by name and city", "name", name, "city", city, "error", err)
	}
	return v, err
}

func (r *vendorRepository) Create(ctx context.Context, v *entity.Vendor) (*entity.Vendor, error) {
	out, err := r.insert(ctx, r.db, v)
	if err != nil {
		r.logger.Error("failed to create vendor", "name", v.Name, "error", err)
		return nil, err
	}
	return out, nil
}

func (r *vendorRepository) insert(ctx context.Context, c conn, v *entity.Vendor) (*entity.Vendor, error) {
	out := *v
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	out.CreatedAt = time.Now().UTC()
	q, args := r.db.builder().Insert("vendors").
		Columns(vendorColumns...).
		Values(out.ID.String(), out.Name, out.Street, out.PostalCode, out.City, out.IBAN, out.BIC, formatTime(out.CreatedAt)).
		Query()
	if _, err := c.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resolve runs lookup and insert in one transaction so concurrent saves of
// the same vendor do not create duplicates.
func (r *vendorRepository) Resolve(ctx context.Context, v *entity.Vendor) (*entity.Vendor, bool, error) {
	var (
		out   *entity.Vendor
		found bool
	)
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if iban := strings.TrimSpace(v.IBAN); iban != "" {
			existing, err := r.selectOne(ctx, tx, entsql.EQ("iban", iban))
			if err == nil {
				out, found = existing, true
				return nil
			}
			if !errors.Is(err, common.ErrNotFound) {
				return err
			}
		}
		if strings.TrimSpace(v.Name) != "" {
			existing, err := r.selectOne(ctx, tx, entsql.EQ("name", v.Name), entsql.EQ("city", v.City))
			if err == nil {
				out, found = existing, true
				return nil
			}
			if !errors.Is(err, common.ErrNotFound) {
				return err
			}
		}
		created, err := r.insert(ctx, tx, v)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		r.logger.Error("failed to resolve vendor", "name", v.Name, "error", err)
		return nil, false, err
	}
	return out, found, nil
}

func (r *vendorRepository) List(ctx context.Context) ([]*entity.Vendor, error) {
	b := r.db.builder()
	q, args := b.Select(vendorColumns...).From(b.Table("vendors")).OrderBy("name").Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list vendors", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			r.logger.Error("failed to scan vendor", "error", err)
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (*entity.Vendor, error) {
	var (
		v         entity.Vendor
		createdAt string
	)
	if err := row.Scan(&v.ID, &v.Name, &v.Street, &v.PostalCode, &v.City, &v.IBAN, &v.BIC, &createdAt); err != nil {
		return nil, err
	}
	v.CreatedAt = parseTime(createdAt)
	return &v, nil
}
