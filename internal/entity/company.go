package entity

import "time"

// Company is the own-company profile used to tell vendor and recipient apart.
type Company struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Street     string    `json:"street"`
	PostalCode string    `json:"postal_code"`
	City       string    `json:"city"`
	TaxID      string    `json:"tax_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
