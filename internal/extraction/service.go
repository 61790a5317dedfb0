// Package extraction runs the invoice extractor for one request and records
// the outcome for later review.
package extraction

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/nlp"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

// CompanySource supplies the current own-company profile. A nil profile
// disables own company matching.
type CompanySource interface {
	Profile(ctx context.Context) (*nlp.CompanyProfile, error)
}

// Request is the extraction payload. ocrText is either a string or an
// object carrying pages; the first non-empty input wins.
type Request struct {
	RequestID string          `json:"request_id,omitempty"`
	OCRText   json.RawMessage `json:"ocrText,omitempty"`
	Pages     []nlp.Page      `json:"pages,omitempty"`
	OCRResult *nlp.Result     `json:"ocrResult,omitempty"`
}

// Data is the flat view the review UI renders.
type Data struct {
	Type   string      `json:"type"`
	Fields []nlp.Field `json:"fields"`
}

// Response is returned for every successful extraction.
type Response struct {
	RequestID  string         `json:"request_id"`
	Status     string         `json:"status"`
	Warnings   []string       `json:"warnings"`
	Data       Data           `json:"data"`
	Prediction nlp.Prediction `json:"prediction"`
}

// Document coalesces the request's input variants into one nlp.Document.
func (r Request) Document() (nlp.Document, error) {
	if raw := strings.TrimSpace(string(r.OCRText)); raw != "" && raw != "null" {
		var s string
		if err := json.Unmarshal(r.OCRText, &s); err == nil {
			return nlp.FromText(s), nil
		}
		var paged struct {
			Pages []nlp.Page `json:"pages"`
		}
		if err := json.Unmarshal(r.OCRText, &paged); err == nil && len(paged.Pages) > 0 {
			return nlp.FromPages(paged.Pages), nil
		}
		return nlp.Document{}, common.InvalidArgument("ocrText must be a string or an object with pages")
	}
	if len(r.Pages) > 0 {
		return nlp.FromPages(r.Pages), nil
	}
	if r.OCRResult != nil {
		return nlp.FromResult(*r.OCRResult), nil
	}
	return nlp.Document{}, common.InvalidArgument("one of ocrText, pages or ocrResult is required")
}

// TextRequest builds a Request carrying flat text.
func TextRequest(requestID, text string) Request {
	raw, _ := json.Marshal(text)
	return Request{RequestID: requestID, OCRText: raw}
}

// Service handles extraction requests.
type Service struct {
	requests repository.RequestRepository
	company  CompanySource
	logger   *slog.Logger
}

// NewService creates a new extraction service. company may be nil.
func NewService(requests repository.RequestRepository, company CompanySource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		requests: requests,
		company:  company,
		logger:   logger,
	}
}

// Extract runs the extractor over req and audits the result.
func (s *Service) Extract(ctx context.Context, req Request) (*Response, error) {
	doc, err := req.Document()
	if err != nil {
		return nil, err
	}
	if doc.Empty() {
		return nil, common.InvalidArgument("document text is empty")
	}

	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		requestID = "req-" + uuid.NewString()
	}
	logger := common.LoggerFromContext(ctx, s.logger).With("request_id", requestID)

	start := time.Now()
	p := nlp.Extract(doc, s.profile(ctx, logger))
	status := string(p.Status())

	resp := &Response{
		RequestID: requestID,
		Status:    status,
		Warnings:  p.Warnings,
		Data: Data{
			Type:   string(p.Classification),
			Fields: p.Fields(),
		},
		Prediction: p,
	}

	if s.requests != nil {
		reqJSON, _ := json.Marshal(req)
		predJSON, _ := json.Marshal(p)
		if _, err := s.requests.Save(ctx, requestID, reqJSON, predJSON); err != nil {
			logger.Error("nlp.extract.audit_failed", "error", err)
		}
	}

	logger.Info("nlp.extract.ok",
		"status", status,
		"type", resp.Data.Type,
		"confidence", p.Confidence,
		"warnings", len(p.Warnings),
		"items", len(p.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (s *Service) profile(ctx context.Context, logger *slog.Logger) *nlp.CompanyProfile {
	if s.company == nil {
		return nil
	}
	p, err := s.company.Profile(ctx)
	if err != nil {
		logger.Warn("nlp.extract.company_unavailable", "error", err)
		return nil
	}
	return p
}
