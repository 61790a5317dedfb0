package entity

import (
	"encoding/json"
	"time"
)

// NLPRequest is the audit row written for every extraction.
type NLPRequest struct {
	RequestID      string          `json:"request_id"`
	RequestJSON    json.RawMessage `json:"request_json,omitempty"`
	PredictionJSON json.RawMessage `json:"prediction_json,omitempty"`
	EditedJSON     json.RawMessage `json:"edited_json,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
