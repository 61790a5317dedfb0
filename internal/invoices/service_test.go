package invoices

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/nlp"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

func newService(t *testing.T) (*Service, repository.VendorRepository) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.Open(ctx, common.DatabaseConfig{Driver: common.DriverSQLite, DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, logger) })
	_, err = repository.Migrate(ctx, db, logger)
	require.NoError(t, err)

	vendors := repository.NewVendorRepository(db, logger)
	return NewService(repository.NewInvoiceRepository(db, logger), vendors, logger), vendors
}

func TestService_SaveNormalizes(t *testing.T) {
	svc, _ := newService(t)
	inv, err := svc.Save(context.Background(), SaveInvoiceRequest{
		InvoiceNumber:  " 2024-001 ",
		IssueDate:      "15.03.2024",
		Classification: "eingang",
		Vendor:         entity.Address{Name: "ACME GmbH", PostalCode: "10115", City: "Berlin"},
		IBAN:           "de89 3704 0044 0532 0130 00",
		GrossTotal:     "1.071,00",
		VATAmount:      "171.00",
		Items:          json.RawMessage(`[]`),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-001", inv.InvoiceNumber)
	assert.Equal(t, "2024-03-15", inv.IssueDate)
	assert.Equal(t, "INCOMING", inv.Classification)
	assert.Equal(t, "reviewed", inv.Status)
	assert.Equal(t, "EUR", inv.Currency)
	assert.Equal(t, "DE89370400440532013000", inv.IBAN)
	require.NotNil(t, inv.GrossTotal)
	assert.Equal(t, "1071.00", inv.GrossTotal.StringFixed(2))
	assert.Nil(t, inv.NetAmount)
	require.NotNil(t, inv.VendorID)

	got, err := svc.Get(context.Background(), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
}

func TestService_SaveReusesVendor(t *testing.T) {
	svc, vendors := newService(t)
	ctx := context.Background()

	a, err := svc.Save(ctx, SaveInvoiceRequest{Vendor: entity.Address{Name: "ACME GmbH", City: "Berlin"}})
	require.NoError(t, err)
	b, err := svc.Save(ctx, SaveInvoiceRequest{Vendor: entity.Address{Name: "ACME GmbH", City: "Berlin"}})
	require.NoError(t, err)
	assert.Equal(t, *a.VendorID, *b.VendorID)

	all, err := vendors.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	c, err := svc.Save(ctx, SaveInvoiceRequest{})
	require.NoError(t, err)
	assert.Nil(t, c.VendorID)
}

func TestService_SaveRejects(t *testing.T) {
	svc, _ := newService(t)
	tests := map[string]SaveInvoiceRequest{
		"classification": {Classification: "sideways"},
		"status":         {Status: "paid"},
		"currency":       {Currency: "EURO"},
		"postal code":    {Vendor: entity.Address{PostalCode: "ABC"}},
		"amount":         {GrossTotal: "abc"},
		"items":          {Items: json.RawMessage(`{`)},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
		})
	}
}

func TestService_List(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, d := range []string{"10.01.2024", "10.02.2024", "10.03.2024"} {
		_, err := svc.Save(ctx, SaveInvoiceRequest{IssueDate: d, Classification: "INCOMING"})
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, ListInvoicesRequest{FromDate: "2024-02-01"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.List(ctx, ListInvoicesRequest{FromDate: "2024-03-01", ToDate: "2024-01-01"})
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))

	_, err = svc.List(ctx, ListInvoicesRequest{FromDate: "01.02.2024"})
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
}

func TestFromPrediction(t *testing.T) {
	p := nlp.Extract(nlp.FromText("Rechnung von:\nACME GmbH\nHauptstr. 5\n10115 Berlin\nRechnungsnr.: 2024-7\nGesamtbetrag: 50,00"), nil)
	req := FromPrediction("req-9", p, "raw")
	assert.Equal(t, "req-9", req.RequestID)
	assert.Equal(t, "draft", req.Status)
	assert.Equal(t, "2024-7", req.InvoiceNumber)
	assert.Equal(t, "50.00", req.GrossTotal)
	assert.Equal(t, "ACME GmbH", req.Vendor.Name)

	svc, _ := newService(t)
	inv, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "draft", inv.Status)

	seen, err := svc.AlreadyIngested(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, seen)
}
