package export

import (
	"context"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/invoices"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatXML  = "xml"
)

// InvoiceLister lists stored invoices.
type InvoiceLister interface {
	List(ctx context.Context, req invoices.ListInvoicesRequest) ([]*entity.Invoice, error)
}

// FeedbackLister lists stored feedback rows.
type FeedbackLister interface {
	ListFeedbacks(ctx context.Context, filter repository.FeedbackFilter) ([]*entity.Feedback, error)
}

// Service renders invoices and feedback into downloadable formats.
type Service struct {
	invoices  InvoiceLister
	feedbacks FeedbackLister
	logger    *slog.Logger
}

func NewService(invs InvoiceLister, feedbacks FeedbackLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invs, feedbacks: feedbacks, logger: logger}
}

// ContentType returns the MIME type and file extension for format.
func ContentType(format string) (string, string) {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	case FormatXML:
		return "application/xml", "xml"
	}
	return "text/csv; charset=utf-8", "csv"
}

var invoiceHeaders = []string{
	"Issue Date",
	"Invoice Number",
	"Type",
	"Status",
	"Vendor",
	"Vendor City",
	"Recipient",
	"Tax ID",
	"IBAN",
	"Currency",
	"Net",
	"VAT",
	"Gross",
	"Source File",
}

func invoiceRow(inv *entity.Invoice) []string {
	return []string{
		inv.IssueDate,
		inv.InvoiceNumber,
		inv.Classification,
		inv.Status,
		inv.Vendor.Name,
		inv.Vendor.City,
		inv.Recipient.Name,
		inv.TaxID,
		inv.IBAN,
		inv.Currency,
		fixed(inv.NetAmount),
		fixed(inv.VATAmount),
		fixed(inv.GrossTotal),
		inv.SourcePath,
	}
}

// Invoices writes the invoices issued between from and to (YYYY-MM-DD,
// both optional and inclusive) to w. When only from is given the window
// ends today.
func (s *Service) Invoices(ctx context.Context, w io.Writer, format, from, to string) (int, error) {
	start := time.Now()
	if from != "" && to == "" {
		to = time.Now().UTC().Format("2006-01-02")
	}
	invs, err := s.invoices.List(ctx, invoices.ListInvoicesRequest{FromDate: from, ToDate: to})
	if err != nil {
		return 0, err
	}

	switch format {
	case FormatXLSX:
		err = writeInvoicesXLSX(w, invs)
	case FormatCSV, "":
		err = writeCSV(w, invoiceHeaders, len(invs), func(i int) []string { return invoiceRow(invs[i]) })
	default:
		return 0, common.InvalidArgumentf("unsupported invoice export format %q", format)
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", format, err)
	}

	s.logger.Info("export.invoices.ok",
		"format", format,
		"rows", len(invs),
		"from", from,
		"to", to,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return len(invs), nil
}

func writeInvoicesXLSX(w io.Writer, invs []*entity.Invoice) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Invoices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, h := range invoiceHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for r, inv := range invs {
		row := r + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		for c, v := range invoiceRow(inv) {
			write(c+1, v)
		}
		// amounts as numbers so the sheet can sum them
		for c, d := range []*decimal.Decimal{inv.NetAmount, inv.VATAmount, inv.GrossTotal} {
			if d != nil {
				write(11+c, d.InexactFloat64())
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "B", 18) // number
	_ = f.SetColWidth(sheet, "C", "D", 11)
	_ = f.SetColWidth(sheet, "E", "G", 28) // parties
	_ = f.SetColWidth(sheet, "H", "I", 26)
	_ = f.SetColWidth(sheet, "J", "J", 9)
	_ = f.SetColWidth(sheet, "K", "M", 13) // amounts
	_ = f.SetColWidth(sheet, "N", "N", 60) // path

	_, err := f.WriteTo(w)
	return err
}

var feedbackHeaders = []string{"id", "request_id", "invoice_id", "field", "detected_text", "correct_text", "error_type", "source", "created_at"}

type feedbackDocument struct {
	XMLName   xml.Name           `xml:"feedbacks"`
	Count     int                `xml:"count,attr"`
	Feedbacks []*entity.Feedback `xml:"feedback"`
}

// Feedbacks writes feedback rows matching filter to w as CSV or XML.
func (s *Service) Feedbacks(ctx context.Context, w io.Writer, format string, filter repository.FeedbackFilter) (int, error) {
	rows, err := s.feedbacks.ListFeedbacks(ctx, filter)
	if err != nil {
		return 0, common.Internal("failed to list feedbacks", err)
	}

	switch format {
	case FormatXML:
		doc := feedbackDocument{Count: len(rows), Feedbacks: rows}
		if _, err = io.WriteString(w, xml.Header); err == nil {
			enc := xml.NewEncoder(w)
			enc.Indent("", "  ")
			err = enc.Encode(doc)
		}
	case FormatCSV, "":
		err = writeCSV(w, feedbackHeaders, len(rows), func(i int) []string {
			fb := rows[i]
			return []string{
				fb.ID.String(),
				fb.RequestID,
				fb.InvoiceID,
				fb.Field,
				fb.DetectedText,
				fb.CorrectText,
				fb.ErrorType,
				fb.Source,
				fb.CreatedAt.UTC().Format(time.RFC3339),
			}
		})
	default:
		return 0, common.InvalidArgumentf("unsupported feedback export format %q", format)
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", format, err)
	}
	s.logger.Info("export.feedbacks.ok", "format", format, "rows", len(rows))
	return len(rows), nil
}

// ParseFormat lowercases format and applies the default.
func ParseFormat(format, def string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return def
	}
	return format
}

func writeCSV(w io.Writer, headers []string, n int, row func(i int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fixed(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

// Filename builds a download name such as invoices_2024-01-01_2024-03-31.xlsx.
func Filename(kind, from, to, ext string) string {
	parts := []string{kind}
	for _, p := range []string{from, to} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 1 {
		parts = append(parts, strconv.FormatInt(time.Now().UTC().Unix(), 10))
	}
	return strings.Join(parts, "_") + "." + ext
}
