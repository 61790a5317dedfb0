package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

type CompanyRepository interface {
	Get(ctx context.Context) (*entity.Company, error)
	Upsert(ctx context.Context, company *entity.Company) (*entity.Company, error)
}

type companyRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewCompanyRepository(db *DB, logger *slog.Logger) CompanyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &companyRepository{
		db:     db,
		logger: logger,
	}
}

var companyColumns = []string{"id", "name", "street", "postal_code", "city", "tax_id", "updated_at"}

func (r *companyRepository) Get(ctx context.Context) (*entity.Company, error) {
	b := r.db.builder()
	q, args := b.Select(companyColumns...).
		From(b.Table("company")).
		Where(entsql.EQ("id", DefaultCompanyID)).
		Limit(1).
		Query()

	var (
		c         entity.Company
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&c.ID, &c.Name, &c.Street, &c.PostalCode, &c.City, &c.TaxID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("company profile not found")
	}
	if err != nil {
		r.logger.Error("failed to get company profile", "error", err)
		return nil, err
	}
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func (r *companyRepository) Upsert(ctx context.Context, company *entity.Company) (*entity.Company, error) {
	now := time.Now().UTC()
	out := *company
	out.ID = DefaultCompanyID
	out.UpdatedAt = now

	b := r.db.builder()
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		q, args := b.Update("company").
			Set("name", out.Name).
			Set("street", out.Street).
			Set("postal_code", out.PostalCode).
			Set("city", out.City).
			Set("tax_id", out.TaxID).
			Set("updated_at", formatTime(now)).
			Where(entsql.EQ("id", DefaultCompanyID)).
			Query()
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			return nil
		}
		q, args = b.Insert("company").
			Columns(companyColumns...).
			Values(out.ID, out.Name, out.Street, out.PostalCode, out.City, out.TaxID, formatTime(now)).
			Query()
		_, err = tx.ExecContext(ctx, q, args...)
		return err
	})
	if err != nil {
		r.logger.Error("failed to upsert company profile", "name", out.Name, "error", err)
		return nil, err
	}
	return &out, nil
}
