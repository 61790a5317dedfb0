package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

type RequestRepository interface {
	// Save records an extraction. Re-using a request id replaces the earlier
	// request and prediction and resets it to new.
	Save(ctx context.Context, requestID string, request, prediction json.RawMessage) (*entity.NLPRequest, error)
	Get(ctx context.Context, requestID string) (*entity.NLPRequest, error)
	SetEdited(ctx context.Context, requestID string, edited json.RawMessage) error
}

type requestRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRequestRepository(db *DB, logger *slog.Logger) RequestRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &requestRepository{
		db:     db,
		logger: logger,
	}
}

func (r *requestRepository) Save(ctx context.Context, requestID string, request, prediction json.RawMessage) (*entity.NLPRequest, error) {
	now := time.Now().UTC()
	status := string(constants.RequestStatusNew)
	b := r.db.builder()
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		q, args := b.Update("nlp_requests").
			Set("request_json", rawOrNull(request)).
			Set("prediction_json", rawOrNull(prediction)).
			SetNull("edited_json").
			Set("status", status).
			Set("updated_at", formatTime(now)).
			Where(entsql.EQ("request_id", requestID)).
			Query()
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			return nil
		}
		q, args = b.Insert("nlp_requests").
			Columns("request_id", "request_json", "prediction_json", "status", "created_at", "updated_at").
			Values(requestID, rawOrNull(request), rawOrNull(prediction), status, formatTime(now), formatTime(now)).
			Query()
		_, err = tx.ExecContext(ctx, q, args...)
		return err
	})
	if err != nil {
		r.logger.Error("failed to save nlp request", "request_id", requestID, "error", err)
		return nil, err
	}
	return &entity.NLPRequest{
		RequestID:      requestID,
		RequestJSON:    request,
		PredictionJSON: prediction,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (r *requestRepository) Get(ctx context.Context, requestID string) (*entity.NLPRequest, error) {
	b := r.db.builder()
	q, args := b.Select("request_id", "request_json", "prediction_json", "edited_json", "status", "created_at", "updated_at").
		From(b.Table("nlp_requests")).
		Where(entsql.EQ("request_id", requestID)).
		Limit(1).
		Query()

	var (
		rec                           entity.NLPRequest
		reqJSON, predJSON, editedJSON sql.NullString
		createdAt, updatedAt          string
	)
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&rec.RequestID, &reqJSON, &predJSON, &editedJSON, &rec.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("request_id not found")
	}
	if err != nil {
		r.logger.Error("failed to get nlp request", "request_id", requestID, "error", err)
		return nil, err
	}
	rec.RequestJSON = rawFromNull(reqJSON)
	rec.PredictionJSON = rawFromNull(predJSON)
	rec.EditedJSON = rawFromNull(editedJSON)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

func (r *requestRepository) SetEdited(ctx context.Context, requestID string, edited json.RawMessage) error {
	q, args := r.db.builder().Update("nlp_requests").
		Set("edited_json", rawOrNull(edited)).
		Set("status", string(constants.RequestStatusEdited)).
		Set("updated_at", formatTime(time.Now())).
		Where(entsql.EQ("request_id", requestID)).
		Query()
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to mark nlp request edited", "request_id", requestID, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NotFound("request_id not found")
	}
	return nil
}

func rawOrNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func rawFromNull(s sql.NullString) json.RawMessage {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.RawMessage(s.String)
}
