package constants

// PredictionStatus is the coarse quality label of an extraction.
type PredictionStatus string

const (
	PredictionOK      PredictionStatus = "ok"
	PredictionPartial PredictionStatus = "partial"
)

// RequestStatus is the lifecycle state of an nlp_requests row.
type RequestStatus string

// Stable values (store these exact strings in DB).
const (
	RequestStatusNew    RequestStatus = "new"
	RequestStatusEdited RequestStatus = "edited"
)

// InvoiceStatus is the review state stored on an invoices row.
type InvoiceStatus string

const (
	InvoiceStatusReviewed InvoiceStatus = "reviewed"
	InvoiceStatusDraft    InvoiceStatus = "draft"
)

// FeedbackSource tells which payload format produced a feedback row.
type FeedbackSource string

const (
	FeedbackSourceCorrections FeedbackSource = "corrections"
	FeedbackSourceLegacy      FeedbackSource = "legacy"
	FeedbackSourceManual      FeedbackSource = "manual"
)

// Feedback error types.
const (
	ErrorTypeCorrection = "correction"
	ErrorTypeOCR        = "ocr"
)
