package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/app"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/ocr"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

const sampleText = `ACME GmbH
Hauptstr. 1
10115 Berlin

Rechnungsnr.: 2024-007
Datum: 02.04.2024
Gesamtbetrag 238,00 EUR
IBAN: DE89 3704 0044 0532 0130 00`

type fixedText struct{}

func (fixedText) Extract(_ context.Context, _ string) (ocr.Result, error) {
	return ocr.Result{Text: sampleText, Method: ocr.MethodPDFToText, Pages: 1, Confidence: 0.9}, nil
}

func newTestRouter(t *testing.T, maxUpload int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.Open(ctx, common.DatabaseConfig{Driver: common.DriverSQLite, DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, logger) })
	_, err = repository.Migrate(ctx, db, logger)
	require.NoError(t, err)

	cfg := &common.Config{Server: common.ServerConfig{UploadMaxBytes: maxUpload}}
	a, err := app.New(cfg, db, logger, app.WithTextExtractor(fixedText{}))
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	return NewRouter(a, logger)
}

func do(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, 0)
	w := do(t, r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestExtract(t *testing.T) {
	r := newTestRouter(t, 0)

	w := do(t, r, http.MethodPost, "/nlp/extract", map[string]any{"request_id": "req-http-1", "ocrText": sampleText})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, "req-http-1", out["request_id"])
	data := out["data"].(map[string]any)
	assert.NotEmpty(t, data["fields"])

	w = do(t, r, http.MethodPost, "/nlp/extract", map[string]any{
		"pages": []map[string]any{{"page_number": 1, "full_text": sampleText}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/nlp/extract", map[string]any{"ocrText": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])

	w = do(t, r, http.MethodPost, "/nlp/extract", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackFlow(t *testing.T) {
	r := newTestRouter(t, 0)
	w := do(t, r, http.MethodPost, "/nlp/extract", map[string]any{"request_id": "req-fb", "ocrText": sampleText})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/nlp/feedback", map[string]any{
		"request_id":  "req-fb",
		"corrections": []map[string]any{{"name": "TOTAL_GROSS", "value": "283,00"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["saved"])

	w = do(t, r, http.MethodPost, "/nlp/feedback", map[string]any{"request_id": "unknown", "corrections": []map[string]any{{"name": "X", "value": "1"}}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/nlp/feedback", map[string]any{"foo": "bar"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/feedbacks", map[string]any{"request_id": "req-fb", "field": "IBAN", "detected_text": "DE00", "correct_text": "DE89"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/feedbacks?request_id=req-fb", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["count"])

	w = do(t, r, http.MethodGet, "/api/feedbacks?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompany(t *testing.T) {
	r := newTestRouter(t, 0)
	w := do(t, r, http.MethodGet, "/api/company", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mustergesellschaft mbH", decode(t, w)["name"])

	w = do(t, r, http.MethodPost, "/api/company", map[string]any{"name": "ACME GmbH", "street": "Hauptstr. 1", "postal_code": "10115", "city": "Berlin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/company", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ACME GmbH", decode(t, w)["name"])

	w = do(t, r, http.MethodPost, "/api/company", map[string]any{"name": "X", "postal_code": "1234"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoices(t *testing.T) {
	r := newTestRouter(t, 0)
	w := do(t, r, http.MethodPost, "/api/invoices", map[string]any{
		"invoice_number": "2024-007",
		"issue_date":     "02.04.2024",
		"classification": "INCOMING",
		"vendor":         map[string]any{"name": "ACME GmbH", "city": "Berlin", "postal_code": "10115"},
		"gross_total":    "238,00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = do(t, r, http.MethodGet, "/api/invoices/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-04-02", decode(t, w)["issue_date"])

	w = do(t, r, http.MethodGet, "/api/invoices?from_date=2024-04-01&to_date=2024-04-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = do(t, r, http.MethodGet, "/api/invoices?from_date=2024-05-01&to_date=2024-04-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/invoices/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "2024-007")

	w = do(t, r, http.MethodGet, "/api/export?kind=payments", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func upload(t *testing.T, r http.Handler, target, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOCRUpload(t *testing.T) {
	r := newTestRouter(t, 1<<10)

	w := upload(t, r, "/api/ocr?extract=true", "scan.pdf", []byte("%PDF-1.4 fake"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, sampleText, out["ocrText"])
	assert.Equal(t, ocr.MethodPDFToText, out["method"])
	require.Contains(t, out, "extraction")

	w = upload(t, r, "/api/ocr", "scan.png", []byte("png"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, r, "/api/ocr", "big.pdf", bytes.Repeat([]byte("x"), 4<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = do(t, r, http.MethodPost, "/api/ocr", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
