package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/invoices"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

type fakeInvoices struct {
	last invoices.ListInvoicesRequest
	rows []*entity.Invoice
}

func (f *fakeInvoices) List(_ context.Context, req invoices.ListInvoicesRequest) ([]*entity.Invoice, error) {
	f.last = req
	return f.rows, nil
}

type fakeFeedbacks struct {
	rows []*entity.Feedback
}

func (f *fakeFeedbacks) ListFeedbacks(_ context.Context, _ repository.FeedbackFilter) ([]*entity.Feedback, error) {
	return f.rows, nil
}

func sampleInvoices() []*entity.Invoice {
	gross := decimal.RequireFromString("1071")
	vat := decimal.RequireFromString("171")
	return []*entity.Invoice{
		{
			ID:             uuid.New(),
			InvoiceNumber:  "2024-001",
			IssueDate:      "2024-03-15",
			Classification: "INCOMING",
			Status:         "reviewed",
			Vendor:         entity.Address{Name: "ACME GmbH", City: "Berlin"},
			Currency:       "EUR",
			VATAmount:      &vat,
			GrossTotal:     &gross,
		},
		{ID: uuid.New(), InvoiceNumber: "2024-002", Classification: "UNKNOWN", Status: "draft", Currency: "EUR"},
	}
}

func newTestService() (*Service, *fakeInvoices) {
	invs := &fakeInvoices{rows: sampleInvoices()}
	fbs := &fakeFeedbacks{rows: []*entity.Feedback{{
		ID:           uuid.New(),
		RequestID:    "req-1",
		Field:        "TOTAL_GROSS",
		DetectedText: "1071.00",
		CorrectText:  "1.071,00 & more",
		Source:       "corrections",
		CreatedAt:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}}}
	return NewService(invs, fbs, slog.New(slog.NewTextHandler(io.Discard, nil))), invs
}

func TestInvoices_CSV(t *testing.T) {
	svc, invs := newTestService()
	var buf bytes.Buffer
	n, err := svc.Invoices(context.Background(), &buf, FormatCSV, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "2024-01-01", invs.last.FromDate)
	assert.Equal(t, "2024-12-31", invs.last.ToDate)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, invoiceHeaders, records[0])
	assert.Equal(t, "2024-001", records[1][1])
	assert.Equal(t, "171.00", records[1][11])
	assert.Equal(t, "1071.00", records[1][12])
	assert.Equal(t, "", records[2][12])
}

func TestInvoices_FromOnlyEndsToday(t *testing.T) {
	svc, invs := newTestService()
	_, err := svc.Invoices(context.Background(), io.Discard, FormatCSV, "2024-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), invs.last.ToDate)
}

func TestInvoices_XLSX(t *testing.T) {
	svc, _ := newTestService()
	var buf bytes.Buffer
	_, err := svc.Invoices(context.Background(), &buf, FormatXLSX, "", "")
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Issue Date", rows[0][0])
	assert.Equal(t, "ACME GmbH", rows[1][4])
	assert.Equal(t, "1071", rows[1][12])
}

func TestInvoices_UnknownFormat(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Invoices(context.Background(), io.Discard, "pdf", "", "")
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
}

func TestFeedbacks_XML(t *testing.T) {
	svc, _ := newTestService()
	var buf bytes.Buffer
	n, err := svc.Feedbacks(context.Background(), &buf, FormatXML, repository.FeedbackFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<feedbacks count="1">`)
	assert.Contains(t, out, "<field>TOTAL_GROSS</field>")
	assert.Contains(t, out, "<correct_text>1.071,00 &amp; more</correct_text>")
}

func TestFeedbacks_CSV(t *testing.T) {
	svc, _ := newTestService()
	var buf bytes.Buffer
	_, err := svc.Feedbacks(context.Background(), &buf, FormatCSV, repository.FeedbackFilter{})
	require.NoError(t, err)
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "TOTAL_GROSS", records[1][3])
	assert.Equal(t, "2024-03-15T10:00:00Z", records[1][8])
}

func TestFilenameAndContentType(t *testing.T) {
	assert.Equal(t, "invoices_2024-01-01_2024-03-31.xlsx", Filename("invoices", "2024-01-01", "2024-03-31", "xlsx"))
	ct, ext := ContentType(FormatXML)
	assert.Equal(t, "application/xml", ct)
	assert.Equal(t, "xml", ext)
	assert.Equal(t, FormatCSV, ParseFormat(" ", FormatCSV))
	assert.Equal(t, FormatXLSX, ParseFormat("XLSX", FormatCSV))
}
