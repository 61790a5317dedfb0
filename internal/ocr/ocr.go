// Package ocr acquires invoice text from uploaded files. Sources are tried
// in order and the first one returning visible text wins.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

// Acquisition methods reported in Result.Method.
const (
	MethodWrapper   = "ocr-wrapper"
	MethodPDFToText = "pdftotext"
	MethodPDFGo     = "pdf-go"
	MethodPlainText = "text"
)

// DefaultWrapperURLs are tried after Config.WrapperURL.
var DefaultWrapperURLs = []string{
	"http://127.0.0.1:8003/api/ocr",
	"http://127.0.0.1:8002/api/ocr",
	"http://127.0.0.1:8001/api/ocr",
}

type Config struct {
	PDFToText      string        // binary name or absolute path; if empty -> "pdftotext"
	WrapperURL     string        // tried before DefaultWrapperURLs
	WrapperTimeout time.Duration // per attempt, default 10s
	DisableWrapper bool
}

// Result is the text acquired from one file.
type Result struct {
	Text       string        `json:"text"`
	Pages      int           `json:"pages"`
	Method     string        `json:"method"`
	Source     string        `json:"source,omitempty"`
	Duration   time.Duration `json:"duration"`
	Warnings   []string      `json:"warnings,omitempty"`
	Confidence float32       `json:"confidence"`
}

// Source produces text for the file types it handles.
type Source interface {
	Name() string
	CanHandle(ext string) bool
	Extract(ctx context.Context, path string) (Result, error)
}

// ErrNoText is returned when every source failed or produced blank text.
var ErrNoText = errors.New("no text could be acquired")

type Extractor struct {
	sources []Source
	logger  *slog.Logger
}

// NewExtractor builds the default chain: OCR wrapper, pdftotext, the pure
// Go PDF reader and the plain text passthrough.
func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PDFToText == "" {
		cfg.PDFToText = "pdftotext"
	}
	if cfg.WrapperTimeout <= 0 {
		cfg.WrapperTimeout = 10 * time.Second
	}

	var sources []Source
	if !cfg.DisableWrapper {
		urls := DefaultWrapperURLs
		if cfg.WrapperURL != "" {
			urls = append([]string{cfg.WrapperURL}, DefaultWrapperURLs...)
		}
		sources = append(sources, NewWrapperClient(urls, cfg.WrapperTimeout, logger))
	}
	sources = append(sources,
		NewPDFToText(cfg.PDFToText, ExecRunner{Logger: logger}),
		PDFReader{},
		PlainText{},
	)
	return NewChain(logger, sources...)
}

// NewChain builds an Extractor over explicit sources.
func NewChain(logger *slog.Logger, sources ...Source) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{sources: sources, logger: logger}
}

// Extract tries each source that handles the file's extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsAllowedExt(ext) {
		e.logger.Error("unsupported ocr extension", "extension", ext)
		return Result{}, common.InvalidArgumentf("unsupported extension: %q", ext)
	}
	e.logger.Debug("starting text acquisition", "path", path, "ext", ext)

	var warnings []string
	for _, src := range e.sources {
		if !src.CanHandle(ext) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Result{Warnings: warnings}, err
		}
		res, err := src.Extract(ctx, path)
		if err != nil {
			e.logger.Warn("ocr.source.failed", "source", src.Name(), "path", path, "error", err)
			warnings = append(warnings, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}
		if strings.TrimSpace(res.Text) == "" {
			warnings = append(warnings, src.Name()+": empty text")
			continue
		}
		res.Warnings = append(warnings, res.Warnings...)
		res.Duration = time.Since(start)
		if res.Pages == 0 {
			res.Pages = 1
		}
		res.Confidence = heuristicConfidence(res.Text)
		e.logger.Info("ocr.extract.ok",
			"path", path,
			"method", res.Method,
			"pages", res.Pages,
			"chars", len(res.Text),
			"duration_ms", res.Duration.Milliseconds(),
		)
		return res, nil
	}
	e.logger.Error("ocr.extract.failed", "path", path, "attempts", len(warnings))
	if len(warnings) == 0 {
		warnings = append(warnings, "no source handles ."+ext)
	}
	return Result{Warnings: warnings}, common.Unavailable(strings.Join(warnings, "; "), ErrNoText)
}
