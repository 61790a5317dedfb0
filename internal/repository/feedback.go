package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

// FeedbackFilter narrows ListFeedbacks. Zero values match everything.
type FeedbackFilter struct {
	RequestID string
	InvoiceID string
	Limit     int
}

type FeedbackRepository interface {
	// SaveCorrections stores the training pair and its per-field feedback rows atomically.
	SaveCorrections(ctx context.Context, record *entity.TrainingRecord, feedbacks []*entity.Feedback) error
	ListFeedbacks(ctx context.Context, filter FeedbackFilter) ([]*entity.Feedback, error)
	ListTraining(ctx context.Context, limit int) ([]*entity.TrainingRecord, error)
}

type feedbackRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewFeedbackRepository(db *DB, logger *slog.Logger) FeedbackRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &feedbackRepository{
		db:     db,
		logger: logger,
	}
}

func (r *feedbackRepository) SaveCorrections(ctx context.Context, record *entity.TrainingRecord, feedbacks []*entity.Feedback) error {
	now := time.Now().UTC()
	b := r.db.builder()
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if record != nil {
			if record.ID == uuid.Nil {
				record.ID = uuid.New()
			}
			record.CreatedAt = now
			q, args := b.Insert("training").
				Columns("id", "request_id", "job_id", "invoice_id", "original_json", "edited_json", "editor_id", "notes", "created_at").
				Values(record.ID.String(), record.RequestID, record.JobID, record.InvoiceID,
					string(orEmptyObject(record.Original)), string(orEmptyObject(record.Edited)),
					record.EditorID, record.Notes, formatTime(now)).
				Query()
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return err
			}
		}
		for _, fb := range feedbacks {
			if fb.ID == uuid.Nil {
				fb.ID = uuid.New()
			}
			fb.CreatedAt = now
			q, args := b.Insert("feedbacks").
				Columns("id", "request_id", "invoice_id", "field", "detected_text", "correct_text", "error_type", "source", "created_at").
				Values(fb.ID.String(), fb.RequestID, fb.InvoiceID, fb.Field, fb.DetectedText, fb.CorrectText, fb.ErrorType, fb.Source, formatTime(now)).
				Query()
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to save corrections", "feedbacks", len(feedbacks), "error", err)
		return err
	}
	return nil
}

func (r *feedbackRepository) ListFeedbacks(ctx context.Context, filter FeedbackFilter) ([]*entity.Feedback, error) {
	b := r.db.builder()
	sel := b.Select("id", "request_id", "invoice_id", "field", "detected_text", "correct_text", "error_type", "source", "created_at").
		From(b.Table("feedbacks")).
		OrderBy(entsql.Desc("created_at"), "id")
	if filter.RequestID != "" {
		sel = sel.Where(entsql.EQ("request_id", filter.RequestID))
	}
	if filter.InvoiceID != "" {
		sel = sel.Where(entsql.EQ("invoice_id", filter.InvoiceID))
	}
	if filter.Limit > 0 {
		sel = sel.Limit(filter.Limit)
	}
	q, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list feedbacks", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Feedback
	for rows.Next() {
		var (
			fb                              entity.Feedback
			requestID, invoiceID, errorType sql.NullString
			createdAt                       string
		)
		if err := rows.Scan(&fb.ID, &requestID, &invoiceID, &fb.Field, &fb.DetectedText, &fb.CorrectText, &errorType, &fb.Source, &createdAt); err != nil {
			r.logger.Error("failed to scan feedback", "error", err)
			return nil, err
		}
		fb.RequestID = nullString(requestID)
		fb.InvoiceID = nullString(invoiceID)
		fb.ErrorType = nullString(errorType)
		fb.CreatedAt = parseTime(createdAt)
		out = append(out, &fb)
	}
	return out, rows.Err()
}

func (r *feedbackRepository) ListTraining(ctx context.Context, limit int) ([]*entity.TrainingRecord, error) {
	b := r.db.builder()
	sel := b.Select("id", "request_id", "job_id", "invoice_id", "original_json", "edited_json", "editor_id", "notes", "created_at").
		From(b.Table("training")).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list training records", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.TrainingRecord
	for rows.Next() {
		var (
			rec                                          entity.TrainingRecord
			requestID, jobID, invoiceID, editorID, notes sql.NullString
			original, edited, createdAt                  string
		)
		if err := rows.Scan(&rec.ID, &requestID, &jobID, &invoiceID, &original, &edited, &editorID, &notes, &createdAt); err != nil {
			r.logger.Error("failed to scan training record", "error", err)
			return nil, err
		}
		rec.RequestID = nullString(requestID)
		rec.JobID = nullString(jobID)
		rec.InvoiceID = nullString(invoiceID)
		rec.EditorID = nullString(editorID)
		rec.Notes = nullString(notes)
		rec.Original = []byte(original)
		rec.Edited = []byte(edited)
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func orEmptyObject(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}
