package processor

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-tracker/internal/ocr"
)

// TextExtractor acquires the text of a file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

type TextStage struct {
	Extractor TextExtractor
	Logger    *slog.Logger
}

func NewTextStage(tx TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Extractor: tx, Logger: logger}
}

// Run acquires the text of path.
func (s *TextStage) Run(ctx context.Context, path string) (ocr.Result, error) {
	res, err := s.Extractor.Extract(ctx, path)
	if err != nil {
		return res, err
	}
	for _, w := range res.Warnings {
		s.Logger.Debug("text stage warning", "path", path, "warning", w)
	}
	return res, nil
}
