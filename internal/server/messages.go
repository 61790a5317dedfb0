package server

import (
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
)

type Empty struct{}

type GetInvoiceRequest struct {
	ID string `json:"id"`
}

type ListInvoicesRequest struct {
	FromDate       string `json:"from_date,omitempty"`
	ToDate         string `json:"to_date,omitempty"`
	VendorName     string `json:"vendor_name,omitempty"`
	Classification string `json:"classification,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

type ListInvoicesResponse struct {
	Invoices []*entity.Invoice `json:"invoices"`
}

type IngestDirectoryRequest struct {
	RootPath   string `json:"root_path"`
	SkipHidden *bool  `json:"skip_hidden,omitempty"` // default true
}

type IngestDirectoryResponse struct {
	Results []ingest.Result `json:"results"`
	Stats   ingest.DirStats `json:"stats"`
}

type ExportRequest struct {
	Kind     string `json:"kind,omitempty"` // invoices (default) or feedbacks
	Format   string `json:"format,omitempty"`
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`
}

type ExportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Rows        int    `json:"rows"`
	Content     []byte `json:"content"`
}
