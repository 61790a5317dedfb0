// Package invoices persists reviewed invoices and links them to vendors.
package invoices

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/nlp"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
	"github.com/joseph-ayodele/invoice-tracker/internal/utils"
)

// Service handles invoice business logic.
type Service struct {
	invoiceRepo repository.InvoiceRepository
	vendorRepo  repository.VendorRepository
	logger      *slog.Logger
}

// NewService creates a new invoice service.
func NewService(invoiceRepo repository.InvoiceRepository, vendorRepo repository.VendorRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		invoiceRepo: invoiceRepo,
		vendorRepo:  vendorRepo,
		logger:      logger,
	}
}

// SaveInvoiceRequest represents a reviewed invoice. Amounts accept both
// "1.234,56" and "1234.56".
type SaveInvoiceRequest struct {
	RequestID      string          `json:"request_id,omitempty"`
	InvoiceNumber  string          `json:"invoice_number"`
	IssueDate      string          `json:"issue_date"`
	Classification string          `json:"classification"`
	Status         string          `json:"status,omitempty"`
	Confidence     float64         `json:"confidence,omitempty"`
	Vendor         entity.Address  `json:"vendor"`
	Recipient      entity.Address  `json:"recipient"`
	TaxID          string          `json:"tax_id,omitempty"`
	IBAN           string          `json:"iban,omitempty"`
	BIC            string          `json:"bic,omitempty"`
	Currency       string          `json:"currency,omitempty"`
	NetAmount      string          `json:"net_amount,omitempty"`
	VATAmount      string          `json:"vat_amount,omitempty"`
	GrossTotal     string          `json:"gross_total,omitempty"`
	Items          json.RawMessage `json:"items,omitempty"`
	TaxBreakdown   json.RawMessage `json:"tax_breakdown,omitempty"`
	OCRText        string          `json:"ocr_text,omitempty"`
	SourcePath     string          `json:"source_path,omitempty"`
	ContentHash    string          `json:"content_hash,omitempty"`
}

// FromPrediction builds a draft invoice from an unreviewed prediction.
func FromPrediction(requestID string, p nlp.Prediction, ocrText string) SaveInvoiceRequest {
	req := SaveInvoiceRequest{
		RequestID:      requestID,
		InvoiceNumber:  p.InvoiceNumber,
		IssueDate:      p.IssueDate,
		Classification: string(p.Classification),
		Status:         string(constants.InvoiceStatusDraft),
		Confidence:     p.Confidence,
		TaxID:          p.TaxID,
		IBAN:           p.Bank.IBAN,
		BIC:            p.Bank.BIC,
		Currency:       p.Currency,
		NetAmount:      amountString(p.Totals.Net),
		VATAmount:      amountString(p.Totals.VAT),
		GrossTotal:     amountString(p.GrossTotal),
		OCRText:        ocrText,
	}
	if p.Vendor != nil {
		req.Vendor = entity.Address{Name: p.Vendor.Name, Street: p.Vendor.Street, PostalCode: p.Vendor.PostalCode, City: p.Vendor.City}
	}
	if p.Recipient != nil {
		req.Recipient = entity.Address{Name: p.Recipient.Name, Street: p.Recipient.Street, PostalCode: p.Recipient.PostalCode, City: p.Recipient.City}
	}
	if len(p.Items) > 0 {
		req.Items, _ = json.Marshal(p.Items)
	}
	if len(p.TaxBreakdown) > 0 {
		req.TaxBreakdown, _ = json.Marshal(p.TaxBreakdown)
	}
	return req
}

// Save validates req, resolves its vendor and stores the invoice.
func (s *Service) Save(ctx context.Context, req SaveInvoiceRequest) (*entity.Invoice, error) {
	classification, ok := constants.CanonicalizeClassification(req.Classification)
	if !ok && strings.TrimSpace(req.Classification) != "" {
		return nil, common.InvalidArgumentf("classification must be one of %s", strings.Join(constants.ClassificationsAsStrings(), ", "))
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = string(constants.InvoiceStatusReviewed)
	}
	if status != string(constants.InvoiceStatusReviewed) && status != string(constants.InvoiceStatusDraft) {
		return nil, common.InvalidArgumentf("status must be %q or %q", constants.InvoiceStatusReviewed, constants.InvoiceStatusDraft)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = constants.DefaultCurrency
	} else if len(currency) != 3 {
		return nil, common.InvalidArgument("currency must be 3 letters (ISO 4217)")
	}

	v := common.NewValidator().
		Field("invoice_number", req.InvoiceNumber, common.MaxLength(64)).
		Field("vendor.postal_code", req.Vendor.PostalCode, common.PostalCode).
		Field("recipient.postal_code", req.Recipient.PostalCode, common.PostalCode)
	if err := v.Err(); err != nil {
		return nil, err
	}

	net, err := parseAmountField("net_amount", req.NetAmount)
	if err != nil {
		return nil, err
	}
	vat, err := parseAmountField("vat_amount", req.VATAmount)
	if err != nil {
		return nil, err
	}
	gross, err := parseAmountField("gross_total", req.GrossTotal)
	if err != nil {
		return nil, err
	}
	for name, raw := range map[string]json.RawMessage{"items": req.Items, "tax_breakdown": req.TaxBreakdown} {
		if len(raw) > 0 && !json.Valid(raw) {
			return nil, common.InvalidArgumentf("%s must be valid JSON", name)
		}
	}

	inv := &entity.Invoice{
		RequestID:      strings.TrimSpace(req.RequestID),
		InvoiceNumber:  strings.TrimSpace(req.InvoiceNumber),
		IssueDate:      utils.NormalizeDate(req.IssueDate),
		Classification: string(classification),
		Status:         status,
		Confidence:     req.Confidence,
		Vendor:         trimAddress(req.Vendor),
		Recipient:      trimAddress(req.Recipient),
		TaxID:          strings.TrimSpace(req.TaxID),
		IBAN:           nlp.NormalizeIBAN(req.IBAN),
		BIC:            strings.ToUpper(strings.TrimSpace(req.BIC)),
		Currency:       currency,
		NetAmount:      net,
		VATAmount:      vat,
		GrossTotal:     gross,
		Items:          req.Items,
		TaxBreakdown:   req.TaxBreakdown,
		OCRText:        req.OCRText,
		SourcePath:     req.SourcePath,
		ContentHash:    req.ContentHash,
	}

	if inv.Vendor.Name != "" || inv.IBAN != "" {
		vendor, found, err := s.vendorRepo.Resolve(ctx, &entity.Vendor{
			Name:       inv.Vendor.Name,
			Street:     inv.Vendor.Street,
			PostalCode: inv.Vendor.PostalCode,
			City:       inv.Vendor.City,
			IBAN:       inv.IBAN,
			BIC:        inv.BIC,
		})
		if err != nil {
			return nil, common.Internal("failed to resolve vendor", err)
		}
		inv.VendorID = &vendor.ID
		s.logger.Debug("vendor resolved", "vendor_id", vendor.ID, "existing", found)
	}

	saved, err := s.invoiceRepo.Create(ctx, inv)
	if err != nil {
		return nil, common.Internal("failed to save invoice", err)
	}
	s.logger.Info("invoice saved", "invoice_id", saved.ID, "invoice_number", saved.InvoiceNumber, "status", saved.Status)
	return saved, nil
}

// Get returns one invoice by id.
func (s *Service) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	invoiceID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, common.InvalidArgument("id must be a UUID")
	}
	return s.invoiceRepo.GetByID(ctx, invoiceID)
}

// ListInvoicesRequest represents invoice listing parameters.
type ListInvoicesRequest struct {
	FromDate       string
	ToDate         string
	VendorName     string
	Classification string
	Limit          int
}

// List returns invoices matching req, newest first.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]*entity.Invoice, error) {
	filter := repository.InvoiceFilter{VendorName: strings.TrimSpace(req.VendorName), Limit: req.Limit}
	if req.FromDate != "" {
		from, err := utils.ParseYMD(req.FromDate)
		if err != nil {
			return nil, common.InvalidArgumentf("from_date invalid (YYYY-MM-DD): %v", err)
		}
		filter.FromDate = from.Format("2006-01-02")
	}
	if req.ToDate != "" {
		to, err := utils.ParseYMD(req.ToDate)
		if err != nil {
			return nil, common.InvalidArgumentf("to_date invalid (YYYY-MM-DD): %v", err)
		}
		filter.ToDate = to.Format("2006-01-02")
	}
	if filter.FromDate != "" && filter.ToDate != "" && filter.FromDate > filter.ToDate {
		return nil, common.InvalidArgument("from_date must not be after to_date")
	}
	if req.Classification != "" {
		c, ok := constants.CanonicalizeClassification(req.Classification)
		if !ok {
			return nil, common.InvalidArgumentf("unknown classification %q", req.Classification)
		}
		filter.Classification = string(c)
	}

	invs, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, common.Internal("failed to list invoices", err)
	}
	s.logger.Info("invoices listed", "count", len(invs), "from_date", filter.FromDate, "to_date", filter.ToDate)
	return invs, nil
}

// AlreadyIngested reports whether a file with this content hash was stored before.
func (s *Service) AlreadyIngested(ctx context.Context, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	_, err := s.invoiceRepo.GetByContentHash(ctx, hash)
	if err == nil {
		return true, nil
	}
	if common.CodeOf(err) == common.CodeNotFound {
		return false, nil
	}
	return false, err
}

func parseAmountField(name, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, ok := nlp.ParseAmount(raw)
	if !ok {
		return nil, common.InvalidArgumentf("%s is not an amount: %q", name, raw)
	}
	return &d, nil
}

func amountString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func trimAddress(a entity.Address) entity.Address {
	return entity.Address{
		Name:       strings.TrimSpace(a.Name),
		Street:     strings.TrimSpace(a.Street),
		PostalCode: strings.TrimSpace(a.PostalCode),
		City:       strings.TrimSpace(a.City),
	}
}
