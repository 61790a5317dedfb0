// Package feedback stores reviewer corrections of extraction results as
// training pairs and per-field feedback rows.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/nlp"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

const clientEditorID = "nlp-client"

// Correction is one reviewed field value.
type Correction struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Payload is the union of both accepted feedback formats.
type Payload struct {
	RequestID   string       `json:"request_id,omitempty"`
	Corrections []Correction `json:"corrections,omitempty"`

	JobID              string          `json:"job_id,omitempty"`
	InvoiceID          string          `json:"invoice_id,omitempty"`
	OriginalPrediction json.RawMessage `json:"original_prediction,omitempty"`
	EditedPrediction   json.RawMessage `json:"edited_prediction,omitempty"`
	EditorID           string          `json:"editor_id,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// Result reports what was stored.
type Result struct {
	Saved      bool   `json:"saved"`
	RequestID  string `json:"request_id,omitempty"`
	JobID      string `json:"job_id,omitempty"`
	InvoiceID  string `json:"invoice_id,omitempty"`
	TrainingID string `json:"training_id"`
	Feedbacks  int    `json:"feedbacks"`
}

// ManualInput is a single feedback row entered outside the review flow.
type ManualInput struct {
	InvoiceID    string `json:"invoice_id,omitempty"`
	RequestID    string `json:"request_id,omitempty"`
	Field        string `json:"field"`
	DetectedText string `json:"detected_text,omitempty"`
	CorrectText  string `json:"correct_text,omitempty"`
	ErrorType    string `json:"error_type,omitempty"`
}

// Service handles feedback business logic.
type Service struct {
	feedbacks repository.FeedbackRepository
	requests  repository.RequestRepository
	payload   *jsonschema.Schema
	manual    *jsonschema.Schema
	logger    *slog.Logger
}

// NewService creates a new feedback service.
func NewService(feedbacks repository.FeedbackRepository, requests repository.RequestRepository, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	payload, err := compileSchema("feedback.json", payloadSchema)
	if err != nil {
		return nil, err
	}
	manual, err := compileSchema("manual_feedback.json", manualSchema)
	if err != nil {
		return nil, err
	}
	return &Service{
		feedbacks: feedbacks,
		requests:  requests,
		payload:   payload,
		manual:    manual,
		logger:    logger,
	}, nil
}

// Submit validates a raw feedback body and stores it.
func (s *Service) Submit(ctx context.Context, body []byte) (*Result, error) {
	if err := validate(s.payload, body); err != nil {
		return nil, common.InvalidArgument(err.Error())
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, common.InvalidArgumentf("decode feedback: %v", err)
	}
	if p.RequestID != "" && p.Corrections != nil {
		return s.submitCorrections(ctx, p)
	}
	return s.submitLegacy(ctx, p)
}

func (s *Service) submitCorrections(ctx context.Context, p Payload) (*Result, error) {
	req, err := s.requests.Get(ctx, p.RequestID)
	if err != nil {
		return nil, err
	}
	detected := map[string]string{}
	if len(req.PredictionJSON) > 0 {
		detected = flatten(req.PredictionJSON)
	}

	edited, err := json.Marshal(map[string]any{"corrections": p.Corrections})
	if err != nil {
		return nil, common.Internal("encode corrections", err)
	}
	original, _ := json.Marshal(detected)

	record := &entity.TrainingRecord{
		RequestID: p.RequestID,
		JobID:     p.RequestID,
		Original:  original,
		Edited:    edited,
		EditorID:  clientEditorID,
	}
	rows := make([]*entity.Feedback, 0, len(p.Corrections))
	for _, c := range p.Corrections {
		rows = append(rows, &entity.Feedback{
			RequestID:    p.RequestID,
			Field:        c.Name,
			DetectedText: detected[c.Name],
			CorrectText:  stringify(c.Value),
			ErrorType:    constants.ErrorTypeCorrection,
			Source:       string(constants.FeedbackSourceCorrections),
		})
	}
	if err := s.feedbacks.SaveCorrections(ctx, record, rows); err != nil {
		return nil, common.Internal("failed to save corrections", err)
	}
	if err := s.requests.SetEdited(ctx, p.RequestID, edited); err != nil {
		return nil, err
	}

	s.logger.Info("feedback.corrections.saved", "request_id", p.RequestID, "corrections", len(rows))
	return &Result{
		Saved:      true,
		RequestID:  p.RequestID,
		TrainingID: record.ID.String(),
		Feedbacks:  len(rows),
	}, nil
}

func (s *Service) submitLegacy(ctx context.Context, p Payload) (*Result, error) {
	record := &entity.TrainingRecord{
		JobID:     p.JobID,
		InvoiceID: p.InvoiceID,
		Original:  p.OriginalPrediction,
		Edited:    p.EditedPrediction,
		EditorID:  p.EditorID,
		Notes:     p.Notes,
	}

	var rows []*entity.Feedback
	if len(p.OriginalPrediction) > 0 && len(p.EditedPrediction) > 0 {
		for _, d := range Diff(p.OriginalPrediction, p.EditedPrediction) {
			rows = append(rows, &entity.Feedback{
				InvoiceID:    p.InvoiceID,
				Field:        d.Field,
				DetectedText: d.Detected,
				CorrectText:  d.Correct,
				ErrorType:    constants.ErrorTypeCorrection,
				Source:       string(constants.FeedbackSourceLegacy),
			})
		}
	}
	if err := s.feedbacks.SaveCorrections(ctx, record, rows); err != nil {
		return nil, common.Internal("failed to save training record", err)
	}

	s.logger.Info("feedback.legacy.saved", "job_id", p.JobID, "invoice_id", p.InvoiceID, "changed_fields", len(rows))
	return &Result{
		Saved:      true,
		JobID:      p.JobID,
		InvoiceID:  p.InvoiceID,
		TrainingID: record.ID.String(),
		Feedbacks:  len(rows),
	}, nil
}

// Record stores a single manually entered feedback row.
func (s *Service) Record(ctx context.Context, body []byte) (*entity.Feedback, error) {
	if err := validate(s.manual, body); err != nil {
		return nil, common.InvalidArgument(err.Error())
	}
	var in ManualInput
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, common.InvalidArgumentf("decode feedback: %v", err)
	}
	errorType := in.ErrorType
	if errorType == "" {
		errorType = constants.ErrorTypeOCR
	}
	fb := &entity.Feedback{
		RequestID:    in.RequestID,
		InvoiceID:    in.InvoiceID,
		Field:        in.Field,
		DetectedText: in.DetectedText,
		CorrectText:  in.CorrectText,
		ErrorType:    errorType,
		Source:       string(constants.FeedbackSourceManual),
	}
	if err := s.feedbacks.SaveCorrections(ctx, nil, []*entity.Feedback{fb}); err != nil {
		return nil, common.Internal("failed to save feedback", err)
	}
	s.logger.Info("feedback.manual.saved", "feedback_id", fb.ID, "field", fb.Field)
	return fb, nil
}

// List returns stored feedback rows, newest first.
func (s *Service) List(ctx context.Context, filter repository.FeedbackFilter) ([]*entity.Feedback, error) {
	rows, err := s.feedbacks.ListFeedbacks(ctx, filter)
	if err != nil {
		return nil, common.Internal("failed to list feedbacks", err)
	}
	return rows, nil
}

// FieldDiff is one field whose value changed during review.
type FieldDiff struct {
	Field    string
	Detected string
	Correct  string
}

// Diff compares two predictions field by field and returns the fields of
// edited whose value differs from original, sorted by field name.
func Diff(original, edited json.RawMessage) []FieldDiff {
	orig := flatten(original)
	edit := flatten(edited)

	names := make([]string, 0, len(edit))
	for k := range edit {
		names = append(names, k)
	}
	sort.Strings(names)

	var out []FieldDiff
	for _, k := range names {
		if orig[k] != edit[k] {
			out = append(out, FieldDiff{Field: k, Detected: orig[k], Correct: edit[k]})
		}
	}
	return out
}

// flatten reduces a prediction to name/value strings. It understands a flat
// extractedData object, a fields list and a serialized nlp.Prediction.
func flatten(raw json.RawMessage) map[string]string {
	var probe struct {
		ExtractedData map[string]any `json:"extractedData"`
		Fields        []nlp.Field    `json:"fields"`
		Data          *struct {
			Fields []nlp.Field `json:"fields"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return map[string]string{}
	}
	switch {
	case probe.ExtractedData != nil:
		out := make(map[string]string, len(probe.ExtractedData))
		for k, v := range probe.ExtractedData {
			out[k] = stringify(v)
		}
		return out
	case probe.Fields != nil:
		return nlp.FieldValues(probe.Fields)
	case probe.Data != nil && probe.Data.Fields != nil:
		return nlp.FieldValues(probe.Data.Fields)
	}
	var p nlp.Prediction
	if err := json.Unmarshal(raw, &p); err != nil {
		return map[string]string{}
	}
	return nlp.FieldValues(p.Fields())
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(string(b))
}
