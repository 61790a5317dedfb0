package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

const maxWrapperResponse = 32 << 20

// WrapperClient posts files to an external OCR service. Candidate URLs are
// tried in order until one answers with parseable JSON.
type WrapperClient struct {
	urls    []string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

func NewWrapperClient(urls []string, timeout time.Duration, logger *slog.Logger) *WrapperClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &WrapperClient{
		urls:    urls,
		timeout: timeout,
		client:  &http.Client{},
		logger:  logger,
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func (w *WrapperClient) WithHTTPClient(c *http.Client) *WrapperClient {
	w.client = c
	return w
}

func (w *WrapperClient) Name() string { return MethodWrapper }

func (w *WrapperClient) CanHandle(ext string) bool { return ext == constants.ExtPDF }

// wrapperResponse is the subset of the OCR wrapper payload we read.
type wrapperResponse struct {
	OCRText   string `json:"ocrText"`
	Pages     int    `json:"pages"`
	OCRResult *struct {
		PagesStructure []struct {
			Lines []struct {
				LineText string `json:"line_text"`
			} `json:"lines"`
		} `json:"pages_structure"`
	} `json:"ocrResult"`
}

func (w *WrapperClient) Extract(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	var errs []string
	for _, url := range w.urls {
		res, err := w.post(ctx, url, filepath.Base(path), data)
		if err == nil {
			res.Source = url
			return res, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		w.logger.Debug("ocr wrapper attempt failed", "url", url, "error", err)
		errs = append(errs, fmt.Sprintf("%s: %v", url, err))
	}
	return Result{}, fmt.Errorf("all wrapper candidates failed: %s", strings.Join(errs, "; "))
}

func (w *WrapperClient) post(ctx context.Context, url, filename string, data []byte) (Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return Result{}, err
	}
	if _, err := part.Write(data); err != nil {
		return Result{}, err
	}
	if err := mw.Close(); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxWrapperResponse))
	if err != nil {
		return Result{}, err
	}
	w.logger.Debug("ocr.wrapper.response", "url", url, "status", resp.StatusCode, "bytes", len(raw), "duration_ms", time.Since(start).Milliseconds())
	if resp.StatusCode/100 != 2 {
		return Result{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	parsed, repaired, err := decodeWrapperBody(raw)
	if err != nil {
		return Result{}, err
	}
	text := wrapperText(parsed)
	res := Result{
		Text:   text,
		Pages:  parsed.Pages,
		Method: MethodWrapper,
	}
	if repaired {
		res.Warnings = append(res.Warnings, "wrapper response decoded as latin1")
	}
	return res, nil
}

// decodeWrapperBody parses raw as UTF-8 JSON, falling back to Latin-1.
func decodeWrapperBody(raw []byte) (*wrapperResponse, bool, error) {
	var out wrapperResponse
	firstErr := json.Unmarshal(raw, &out)
	if firstErr == nil && utf8.Valid(raw) {
		return &out, false, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode latin1: %w", err)
	}
	out = wrapperResponse{}
	if err := json.Unmarshal(decoded, &out); err != nil {
		if firstErr != nil {
			return nil, false, fmt.Errorf("parse wrapper response: %w", firstErr)
		}
		return nil, false, fmt.Errorf("parse wrapper response: %w", err)
	}
	return &out, true, nil
}

// wrapperText prefers ocrText and otherwise flattens pages_structure,
// joining lines with \n and pages with a blank line. The result is NFC.
func wrapperText(r *wrapperResponse) string {
	text := r.OCRText
	if strings.TrimSpace(text) == "" && r.OCRResult != nil {
		pages := make([]string, 0, len(r.OCRResult.PagesStructure))
		for _, p := range r.OCRResult.PagesStructure {
			lines := make([]string, 0, len(p.Lines))
			for _, l := range p.Lines {
				lines = append(lines, l.LineText)
			}
			pages = append(pages, strings.Join(lines, "\n"))
		}
		text = strings.Join(pages, "\n\n")
		if r.Pages == 0 {
			r.Pages = len(pages)
		}
	}
	return norm.NFC.String(repairMojibake(text))
}

// repairMojibake undoes UTF-8 text that was decoded as Latin-1 once
// ("MÃ¼ller" -> "Müller"). Text that does not round-trip is left alone.
func repairMojibake(s string) string {
	if !strings.ContainsAny(s, "ÃÂ") {
		return s
	}
	b, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(b) {
		return s
	}
	return b
}
