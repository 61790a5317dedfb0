package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/extraction"
	"github.com/joseph-ayodele/invoice-tracker/internal/invoices"
)

// Extractor runs extraction for one request.
type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) (*extraction.Response, error)
}

// InvoiceStore persists drafts and answers duplicate checks.
type InvoiceStore interface {
	AlreadyIngested(ctx context.Context, hash string) (bool, error)
	Save(ctx context.Context, req invoices.SaveInvoiceRequest) (*entity.Invoice, error)
}

type ExtractStage struct {
	Extraction Extractor
	Invoices   InvoiceStore // optional; nil skips draft storage
	Logger     *slog.Logger
}

func NewExtractStage(ex Extractor, store InvoiceStore, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Extraction: ex, Invoices: store, Logger: logger}
}

// Seen reports whether a file with this hash already produced an invoice.
func (s *ExtractStage) Seen(ctx context.Context, hash string) (bool, error) {
	if s.Invoices == nil {
		return false, nil
	}
	return s.Invoices.AlreadyIngested(ctx, hash)
}

// Run extracts text and stores a draft invoice, filling out.
func (s *ExtractStage) Run(ctx context.Context, path, hash, text string, out *Outcome) error {
	resp, err := s.Extraction.Extract(ctx, extraction.TextRequest("", text))
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	out.RequestID = resp.RequestID
	out.Status = resp.Status
	out.Confidence = resp.Prediction.Confidence

	if s.Invoices == nil {
		return nil
	}
	draft := invoices.FromPrediction(resp.RequestID, resp.Prediction, text)
	draft.SourcePath = path
	draft.ContentHash = hash
	inv, err := s.Invoices.Save(ctx, draft)
	if err != nil {
		return fmt.Errorf("save draft invoice: %w", err)
	}
	out.InvoiceID = &inv.ID
	s.Logger.Debug("draft invoice stored", "invoice_id", inv.ID, "request_id", resp.RequestID)
	return nil
}
