// Package app wires repositories, services and the file pipeline from a
// loaded configuration.
package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/export"
	"github.com/joseph-ayodele/invoice-tracker/internal/extraction"
	"github.com/joseph-ayodele/invoice-tracker/internal/feedback"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/invoices"
	"github.com/joseph-ayodele/invoice-tracker/internal/ocr"
	processor "github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
	"github.com/joseph-ayodele/invoice-tracker/internal/profiles"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

// App holds every service the transports and CLI commands need.
type App struct {
	DB         *repository.DB
	Config     *common.Config
	Company    *profiles.Service
	Extraction *extraction.Service
	Feedback   *feedback.Service
	Invoices   *invoices.Service
	Export     *export.Service
	Text       processor.TextExtractor
	Processor  *processor.Processor
	Ingestor   *ingest.FSIngestor
	Logger     *slog.Logger
}

// Option overrides part of the default wiring.
type Option func(*App)

// WithTextExtractor replaces the default OCR chain.
func WithTextExtractor(tx processor.TextExtractor) Option {
	return func(a *App) { a.Text = tx }
}

// New builds the services on top of an opened and migrated database.
func New(cfg *common.Config, db *repository.DB, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{DB: db, Config: cfg, Logger: logger}

	companyRepo := repository.NewCompanyRepository(db, logger)
	requestRepo := repository.NewRequestRepository(db, logger)
	feedbackRepo := repository.NewFeedbackRepository(db, logger)
	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	vendorRepo := repository.NewVendorRepository(db, logger)

	a.Company = profiles.NewService(companyRepo, logger)
	a.Extraction = extraction.NewService(requestRepo, a.Company, logger)
	fb, err := feedback.NewService(feedbackRepo, requestRepo, logger)
	if err != nil {
		return nil, err
	}
	a.Feedback = fb
	a.Invoices = invoices.NewService(invoiceRepo, vendorRepo, logger)
	a.Export = export.NewService(a.Invoices, feedbackRepo, logger)
	a.Text = ocr.NewExtractor(ocr.Config{
		PDFToText:      cfg.OCR.PDFToText,
		WrapperURL:     cfg.OCR.WrapperURL,
		WrapperTimeout: cfg.OCR.Timeout,
		DisableWrapper: cfg.OCR.DisableProxy,
	}, logger)

	for _, o := range opts {
		o(a)
	}

	a.Processor = processor.NewProcessor(logger,
		processor.NewTextStage(a.Text, logger),
		processor.NewExtractStage(a.Extraction, a.Invoices, logger),
	)
	a.Ingestor = ingest.NewFSIngestor(a.Processor, logger)
	return a, nil
}

// Start imports the configured profile file, if any, and loads the company
// cache.
func (a *App) Start(ctx context.Context) error {
	if path := a.Config.Company.ProfileFile; path != "" {
		c, err := a.Company.ImportFile(ctx, path)
		if err != nil {
			a.Logger.Error("company profile import failed", "path", path, "error", err)
			return err
		}
		a.Logger.Info("company profile imported", "path", path, "name", c.Name)
	}
	p, err := a.Company.Refresh(ctx)
	if err != nil {
		return err
	}
	if p == nil {
		a.Logger.Warn("no company profile stored; outgoing detection by company match disabled")
	}
	return nil
}
