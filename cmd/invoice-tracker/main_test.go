package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
)

const invoiceText = `ACME GmbH
Hauptstr. 1
10115 Berlin

Rechnungsnr.: 2024-099
Datum: 01.02.2024
Gesamtbetrag 59,50 EUR`

func run(t *testing.T, dsn string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OCR_DISABLE_WRAPPER", "true")
	t.Setenv("LOG_LEVEL", "error")
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", dsn}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func testDSN(t *testing.T) string {
	return filepath.Join(t.TempDir(), "invoices.db")
}

func TestMigrateIsIdempotent(t *testing.T) {
	dsn := testDSN(t)
	out, err := run(t, dsn, "migrate")
	require.NoError(t, err)
	assert.NotContains(t, out, "applied 0")

	out, err = run(t, dsn, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "applied 0 migration(s)")
}

func TestExtractText(t *testing.T) {
	out, err := run(t, testDSN(t), "extract", "--text", invoiceText, "--request-id", "req-cli")
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "req-cli", resp["request_id"])

	_, err = run(t, testDSN(t), "extract", "--text", "   ")
	require.Error(t, err)
}

func TestCompanySetAndShow(t *testing.T) {
	dsn := testDSN(t)
	out, err := run(t, dsn, "company", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Mustergesellschaft mbH")

	_, err = run(t, dsn, "company", "set", "--name", "Neue GmbH", "--postal-code", "54321", "--city", "Neustadt")
	require.NoError(t, err)
	out, err = run(t, dsn, "company", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Neue GmbH")

	_, err = run(t, dsn, "company", "set", "--name", "Bad", "--postal-code", "12")
	require.Error(t, err)

	profile := filepath.Join(t.TempDir(), "company.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("name: Import AG\npostal_code: \"80331\"\ncity: München\n"), 0o644))
	out, err = run(t, dsn, "company", "import", profile)
	require.NoError(t, err)
	assert.Contains(t, out, "Import AG")
}

func TestIngestAndExport(t *testing.T) {
	dsn := testDSN(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(invoiceText), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte(strings.Replace(invoiceText, "2024-099", "2024-100", 1)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

	out, err := run(t, dsn, "ingest", "--dir", dir)
	require.NoError(t, err)
	var stats ingest.DirStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, ingest.DirStats{Scanned: 3, Matched: 2, Succeeded: 2}, stats)

	// same content again is deduplicated by hash
	out, err = run(t, dsn, "ingest", "--dir", dir)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, uint32(2), stats.Deduplicated)

	out, err = run(t, dsn, "export", "invoices", "--format", "csv", "--from", "2024-01-01", "--to", "2024-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-099")
	assert.Contains(t, out, "2024-100")

	_, err = run(t, dsn, "export", "payments")
	require.Error(t, err)
}
