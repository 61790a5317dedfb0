package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Feedback is a single corrected field.
type Feedback struct {
	ID           uuid.UUID `json:"id" xml:"id"`
	RequestID    string    `json:"request_id,omitempty" xml:"request_id,omitempty"`
	InvoiceID    string    `json:"invoice_id,omitempty" xml:"invoice_id,omitempty"`
	Field        string    `json:"field" xml:"field"`
	DetectedText string    `json:"detected_text" xml:"detected_text"`
	CorrectText  string    `json:"correct_text" xml:"correct_text"`
	ErrorType    string    `json:"error_type,omitempty" xml:"error_type,omitempty"`
	Source       string    `json:"source" xml:"source"`
	CreatedAt    time.Time `json:"created_at" xml:"created_at"`
}

// TrainingRecord keeps a full original/edited prediction pair.
type TrainingRecord struct {
	ID        uuid.UUID       `json:"id"`
	RequestID string          `json:"request_id,omitempty"`
	JobID     string          `json:"job_id,omitempty"`
	InvoiceID string          `json:"invoice_id,omitempty"`
	Original  json.RawMessage `json:"original"`
	Edited    json.RawMessage `json:"edited"`
	EditorID  string          `json:"editor_id,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
