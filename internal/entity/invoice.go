package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Address is the postal part of a party stored on an invoice.
type Address struct {
	Name       string `json:"name,omitempty"`
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	City       string `json:"city,omitempty"`
}

// Invoice represents a reviewed or draft invoice for data transfer between layers.
type Invoice struct {
	ID             uuid.UUID        `json:"id"`
	RequestID      string           `json:"request_id,omitempty"`
	VendorID       *uuid.UUID       `json:"vendor_id,omitempty"`
	InvoiceNumber  string           `json:"invoice_number,omitempty"`
	IssueDate      string           `json:"issue_date,omitempty"`
	Classification string           `json:"classification"`
	Status         string           `json:"status"`
	Confidence     float64          `json:"confidence"`
	Vendor         Address          `json:"vendor"`
	Recipient      Address          `json:"recipient"`
	TaxID          string           `json:"tax_id,omitempty"`
	IBAN           string           `json:"iban,omitempty"`
	BIC            string           `json:"bic,omitempty"`
	Currency       string           `json:"currency"`
	NetAmount      *decimal.Decimal `json:"net_amount,omitempty"`
	VATAmount      *decimal.Decimal `json:"vat_amount,omitempty"`
	GrossTotal     *decimal.Decimal `json:"gross_total,omitempty"`
	Items          json.RawMessage  `json:"items,omitempty"`
	TaxBreakdown   json.RawMessage  `json:"tax_breakdown,omitempty"`
	OCRText        string           `json:"ocr_text,omitempty"`
	SourcePath     string           `json:"source_path,omitempty"`
	ContentHash    string           `json:"content_hash,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
