package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

// InvoiceFilter narrows List. Dates compare against the ISO issue_date.
type InvoiceFilter struct {
	FromDate       string
	ToDate         string
	VendorName     string
	Classification string
	Limit          int
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByContentHash(ctx context.Context, hash string) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

var invoiceColumns = []string{
	"id", "request_id", "vendor_id", "invoice_number", "issue_date", "classification", "status", "confidence",
	"vendor_name", "vendor_street", "vendor_postal_code", "vendor_city",
	"recipient_name", "recipient_street", "recipient_postal_code", "recipient_city",
	"tax_id", "iban", "bic", "currency", "net_amount", "vat_amount", "gross_total",
	"items_json", "tax_breakdown_json", "ocr_text", "source_path", "content_hash",
	"created_at", "updated_at",
}

func (r *invoiceRepository) Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	out := *inv
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	now := time.Now().UTC()
	out.CreatedAt = now
	out.UpdatedAt = now

	var vendorID any
	if out.VendorID != nil {
		vendorID = out.VendorID.String()
	}
	q, args := r.db.builder().Insert("invoices").
		Columns(invoiceColumns...).
		Values(
			out.ID.String(), nullIfEmpty(out.RequestID), vendorID, out.InvoiceNumber, out.IssueDate, out.Classification, out.Status, out.Confidence,
			out.Vendor.Name, out.Vendor.Street, out.Vendor.PostalCode, out.Vendor.City,
			out.Recipient.Name, out.Recipient.Street, out.Recipient.PostalCode, out.Recipient.City,
			out.TaxID, out.IBAN, out.BIC, out.Currency, decimalOrNull(out.NetAmount), decimalOrNull(out.VATAmount), decimalOrNull(out.GrossTotal),
			rawOrNull(out.Items), rawOrNull(out.TaxBreakdown), nullIfEmpty(out.OCRText), out.SourcePath, out.ContentHash,
			formatTime(now), formatTime(now),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		r.logger.Error("failed to create invoice", "invoice_number", out.InvoiceNumber, "error", err)
		return nil, err
	}
	return &out, nil
}

func (r *invoiceRepository) getOne(ctx context.Context, pred *entsql.Predicate) (*entity.Invoice, error) {
	b := r.db.builder()
	q, args := b.Select(invoiceColumns...).From(b.Table("invoices")).Where(pred).Limit(1).Query()
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("invoice not found")
	}
	return inv, err
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, err := r.getOne(ctx, entsql.EQ("id", id.String()))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		r.logger.Error("failed to get invoice", "invoice_id", id, "error", err)
	}
	return inv, err
}

func (r *invoiceRepository) GetByContentHash(ctx context.Context, hash string) (*entity.Invoice, error) {
	inv, err := r.getOne(ctx, entsql.EQ("content_hash", hash))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		r.logger.Error("failed to get invoice by content hash", "error", err)
	}
	return inv, err
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error) {
	b := r.db.builder()
	sel := b.Select(invoiceColumns...).From(b.Table("invoices"))
	if filter.FromDate != "" {
		sel = sel.Where(entsql.GTE("issue_date", filter.FromDate))
	}
	if filter.ToDate != "" {
		sel = sel.Where(entsql.LTE("issue_date", filter.ToDate))
	}
	if filter.VendorName != "" {
		sel = sel.Where(entsql.EQ("vendor_name", filter.VendorName))
	}
	if filter.Classification != "" {
		sel = sel.Where(entsql.EQ("classification", filter.Classification))
	}
	sel = sel.OrderBy(entsql.Desc("created_at"), "id")
	if filter.Limit > 0 {
		sel = sel.Limit(filter.Limit)
	}
	q, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			r.logger.Error("failed to scan invoice", "error", err)
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var (
		inv                   entity.Invoice
		requestID, vendorID   sql.NullString
		net, vat, gross       sql.NullString
		items, taxes, ocrText sql.NullString
		createdAt, updatedAt  string
	)
	err := row.Scan(
		&inv.ID, &requestID, &vendorID, &inv.InvoiceNumber, &inv.IssueDate, &inv.Classification, &inv.Status, &inv.Confidence,
		&inv.Vendor.Name, &inv.Vendor.Street, &inv.Vendor.PostalCode, &inv.Vendor.City,
		&inv.Recipient.Name, &inv.Recipient.Street, &inv.Recipient.PostalCode, &inv.Recipient.City,
		&inv.TaxID, &inv.IBAN, &inv.BIC, &inv.Currency, &net, &vat, &gross,
		&items, &taxes, &ocrText, &inv.SourcePath, &inv.ContentHash,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.RequestID = nullString(requestID)
	if vendorID.Valid {
		if id, err := uuid.Parse(vendorID.String); err == nil {
			inv.VendorID = &id
		}
	}
	inv.NetAmount = decimalFromNull(net)
	inv.VATAmount = decimalFromNull(vat)
	inv.GrossTotal = decimalFromNull(gross)
	inv.Items = rawFromNull(items)
	inv.TaxBreakdown = rawFromNull(taxes)
	inv.OCRText = nullString(ocrText)
	inv.CreatedAt = parseTime(createdAt)
	inv.UpdatedAt = parseTime(updatedAt)
	return &inv, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Amounts are stored as fixed two-decimal text so both dialects keep them exact.
func decimalOrNull(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.StringFixed(2)
}

func decimalFromNull(s sql.NullString) *decimal.Decimal {
	if !s.Valid || s.String == "" {
		return nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil
	}
	return &d
}
