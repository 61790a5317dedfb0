package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

// PDFReader extracts embedded text with a pure Go PDF parser. It needs no
// external binaries but cannot read scanned pages.
type PDFReader struct{}

func (PDFReader) Name() string { return MethodPDFGo }

func (PDFReader) CanHandle(ext string) bool { return ext == constants.ExtPDF }

func (PDFReader) Extract(ctx context.Context, path string) (res Result, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return Result{}, fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Result{}, fmt.Errorf("read pdf text: %w", err)
	}
	return Result{
		Text:   buf.String(),
		Pages:  r.NumPage(),
		Method: MethodPDFGo,
	}, nil
}
