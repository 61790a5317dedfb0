package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

var invoiceDateLayouts = []string{"2006-01-02", "02.01.2006", "2.1.2006", "02/01/2006"}

func ParseYMD(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	// strip time to midnight UTC to match DATE semantics
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseInvoiceDate accepts ISO and German day-first dates.
func ParseInvoiceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range invoiceDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// NormalizeDate renders a parseable invoice date as YYYY-MM-DD and returns
// anything else trimmed but unchanged.
func NormalizeDate(s string) string {
	t, err := ParseInvoiceDate(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return t.Format("2006-01-02")
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the hex SHA-256 of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
