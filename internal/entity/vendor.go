package entity

import (
	"time"

	"github.com/google/uuid"
)

// Vendor represents a known invoice issuer.
type Vendor struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Street     string    `json:"street,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	City       string    `json:"city,omitempty"`
	IBAN       string    `json:"iban,omitempty"`
	BIC        string    `json:"bic,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
