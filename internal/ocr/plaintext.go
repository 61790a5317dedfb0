package ocr

import (
	"context"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

// PlainText passes .txt files through. Files that are not valid UTF-8 are
// decoded as Latin-1.
type PlainText struct{}

func (PlainText) Name() string { return MethodPlainText }

func (PlainText) CanHandle(ext string) bool { return ext == constants.ExtTXT }

func (PlainText) Extract(_ context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	text := string(data)
	var warnings []string
	if !utf8.Valid(data) {
		if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
			text = string(decoded)
			warnings = append(warnings, "decoded as latin1")
		}
	}
	return Result{Text: text, Pages: 1, Method: MethodPlainText, Warnings: warnings}, nil
}
