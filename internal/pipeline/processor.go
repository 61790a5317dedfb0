package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-tracker/internal/utils"
)

// Outcome summarises one processed file.
type Outcome struct {
	Path       string     `json:"path"`
	Hash       string     `json:"hash"`
	Skipped    bool       `json:"skipped,omitempty"`
	RequestID  string     `json:"request_id,omitempty"`
	InvoiceID  *uuid.UUID `json:"invoice_id,omitempty"`
	Method     string     `json:"method,omitempty"`
	Status     string     `json:"status,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Duration   time.Duration
}

// Processor coordinates text acquisition then extraction and draft storage.
type Processor struct {
	Logger  *slog.Logger
	Text    *TextStage
	Extract *ExtractStage
}

func NewProcessor(logger *slog.Logger, text *TextStage, extract *ExtractStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Extract: extract}
}

// ProcessFile acquires the text of path, runs extraction and stores a draft
// invoice. Files whose content was ingested before are skipped.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Outcome, error) {
	start := time.Now()
	out := Outcome{Path: path}

	hash, err := utils.HashFile(path)
	if err != nil {
		p.Logger.Error("processor.hash.failed", "path", path, "err", err)
		return out, fmt.Errorf("hash file: %w", err)
	}
	out.Hash = hash

	seen, err := p.Extract.Seen(ctx, hash)
	if err != nil {
		p.Logger.Error("processor.dedupe.failed", "path", path, "err", err)
		return out, err
	}
	if seen {
		out.Skipped = true
		p.Logger.Info("processor.skip.duplicate", "path", path, "hash", hash)
		return out, nil
	}

	// 1) text stage → wrapper, pdftotext, pure Go reader or plain text
	res, err := p.Text.Run(ctx, path)
	if err != nil {
		p.Logger.Error("processor.text.failed", "path", path, "err", err)
		return out, err
	}
	out.Method = res.Method
	p.Logger.Info("processor.text.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"confidence", res.Confidence,
	)

	// 2) extract stage → prediction, audit row and draft invoice
	if err := p.Extract.Run(ctx, path, hash, res.Text, &out); err != nil {
		p.Logger.Error("processor.extract.failed", "path", path, "err", err)
		return out, err
	}
	out.Duration = time.Since(start)
	p.Logger.Info("processor.extract.ok",
		"path", path,
		"request_id", out.RequestID,
		"status", out.Status,
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}
