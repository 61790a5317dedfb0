package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// DefaultCompanyID is the key of the single company profile row.
const DefaultCompanyID = "default"

type migration struct {
	version    int
	name       string
	statements []string
	apply      func(ctx context.Context, tx *sql.Tx, b *entsql.DialectBuilder) error
}

// The DDL below only uses types SQLite and Postgres both accept.
var migrations = []migration{
	{
		version: 1,
		name:    "core_tables",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS company (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				street TEXT NOT NULL DEFAULT '',
				postal_code TEXT NOT NULL DEFAULT '',
				city TEXT NOT NULL DEFAULT '',
				tax_id TEXT NOT NULL DEFAULT '',
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS nlp_requests (
				request_id TEXT PRIMARY KEY,
				request_json TEXT,
				prediction_json TEXT,
				edited_json TEXT,
				status TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS feedbacks (
				id TEXT PRIMARY KEY,
				request_id TEXT,
				invoice_id TEXT,
				field TEXT NOT NULL,
				detected_text TEXT NOT NULL DEFAULT '',
				correct_text TEXT NOT NULL DEFAULT '',
				error_type TEXT,
				source TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS training (
				id TEXT PRIMARY KEY,
				request_id TEXT,
				job_id TEXT,
				invoice_id TEXT,
				original_json TEXT NOT NULL,
				edited_json TEXT NOT NULL,
				editor_id TEXT,
				notes TEXT,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_feedbacks_request_id ON feedbacks (request_id)`,
		},
	},
	{
		version: 2,
		name:    "vendors_and_invoices",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS vendors (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				street TEXT NOT NULL DEFAULT '',
				postal_code TEXT NOT NULL DEFAULT '',
				city TEXT NOT NULL DEFAULT '',
				iban TEXT NOT NULL DEFAULT '',
				bic TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS invoices (
				id TEXT PRIMARY KEY,
				request_id TEXT,
				vendor_id TEXT REFERENCES vendors (id),
				invoice_number TEXT NOT NULL DEFAULT '',
				issue_date TEXT NOT NULL DEFAULT '',
				classification TEXT NOT NULL,
				status TEXT NOT NULL,
				confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
				vendor_name TEXT NOT NULL DEFAULT '',
				vendor_street TEXT NOT NULL DEFAULT '',
				vendor_postal_code TEXT NOT NULL DEFAULT '',
				vendor_city TEXT NOT NULL DEFAULT '',
				recipient_name TEXT NOT NULL DEFAULT '',
				recipient_street TEXT NOT NULL DEFAULT '',
				recipient_postal_code TEXT NOT NULL DEFAULT '',
				recipient_city TEXT NOT NULL DEFAULT '',
				tax_id TEXT NOT NULL DEFAULT '',
				iban TEXT NOT NULL DEFAULT '',
				bic TEXT NOT NULL DEFAULT '',
				currency TEXT NOT NULL,
				net_amount TEXT,
				vat_amount TEXT,
				gross_total TEXT,
				items_json TEXT,
				tax_breakdown_json TEXT,
				ocr_text TEXT,
				source_path TEXT NOT NULL DEFAULT '',
				content_hash TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_vendors_iban ON vendors (iban)`,
			`CREATE INDEX IF NOT EXISTS idx_vendors_name_city ON vendors (name, city)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_vendor_name ON invoices (vendor_name)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_vendor_city ON invoices (vendor_city)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_iban ON invoices (iban)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_content_hash ON invoices (content_hash)`,
		},
	},
	{
		version: 3,
		name:    "seed_company",
		apply:   seedCompany,
	},
}

// Migrate creates the schema and applies every migration not yet recorded
// in schema_migrations. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		logger.Error("failed to create schema_migrations", "error", err)
		return 0, err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		logger.Error("failed to read schema_migrations", "error", err)
		return 0, err
	}

	b := db.builder()
	count := 0
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := db.inTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			if m.apply != nil {
				if err := m.apply(ctx, tx, b); err != nil {
					return err
				}
			}
			q, args := b.Insert("schema_migrations").
				Columns("version", "name", "applied_at").
				Values(m.version, m.name, formatTime(time.Now())).
				Query()
			_, err := tx.ExecContext(ctx, q, args...)
			return err
		})
		if err != nil {
			logger.Error("migration failed", "version", m.version, "name", m.name, "error", err)
			return count, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		logger.Info("migration applied", "version", m.version, "name", m.name)
		count++
	}
	return count, nil
}

func appliedVersions(ctx context.Context, db *DB) (map[int]bool, error) {
	b := db.builder()
	q, args := b.Select("version").From(b.Table("schema_migrations")).Query()
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func seedCompany(ctx context.Context, tx *sql.Tx, b *entsql.DialectBuilder) error {
	q, args := b.Select("id").From(b.Table("company")).Where(entsql.EQ("id", DefaultCompanyID)).Query()
	var id string
	err := tx.QueryRowContext(ctx, q, args...).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	q, args = b.Insert("company").
		Columns("id", "name", "street", "postal_code", "city", "tax_id", "updated_at").
		Values(DefaultCompanyID, "Mustergesellschaft mbH", "Musterstr. 11", "12345", "Musterstadt", "", formatTime(time.Now())).
		Query()
	_, err = tx.ExecContext(ctx, q, args...)
	return err
}

// PendingMigrations returns the names of migrations not yet applied.
func PendingMigrations(ctx context.Context, db *DB) ([]string, error) {
	var exists int
	q := `SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'schema_migrations'`
	if db.Dialect() == dialect.SQLite {
		q = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`
	}
	if err := db.QueryRowContext(ctx, q).Scan(&exists); err != nil {
		return nil, err
	}
	applied := map[int]bool{}
	if exists > 0 {
		var err error
		if applied, err = appliedVersions(ctx, db); err != nil {
			return nil, err
		}
	}
	var pending []string
	for _, m := range migrations {
		if !applied[m.version] {
			pending = append(pending, fmt.Sprintf("%03d_%s", m.version, m.name))
		}
	}
	return pending, nil
}
