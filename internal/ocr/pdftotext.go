package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

// PDFToText shells out to poppler's pdftotext.
type PDFToText struct {
	bin    string
	runner Runner
}

func NewPDFToText(bin string, runner Runner) *PDFToText {
	if bin == "" {
		bin = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PDFToText{bin: bin, runner: runner}
}

func (p *PDFToText) Name() string { return MethodPDFToText }

func (p *PDFToText) CanHandle(ext string) bool { return ext == constants.ExtPDF }

func (p *PDFToText) Extract(ctx context.Context, path string) (Result, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := p.runner.Run(ctx, p.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg != "" {
			return Result{}, fmt.Errorf("%w: %s", err, clip(msg, 512))
		}
		return Result{}, err
	}
	text := string(out)
	// A form-feed \f is used as page separator by default
	pages := 1 + strings.Count(strings.TrimRight(text, "\f\n"), "\f")
	return Result{
		Text:   strings.ReplaceAll(text, "\f", "\n"),
		Pages:  pages,
		Method: MethodPDFToText,
	}, nil
}
