package constants

import "strings"

// AllowedExtensions holds the file extensions accepted for invoice ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// UploadContentTypes lists the MIME types accepted by the upload endpoint.
var UploadContentTypes = map[string]struct{}{
	"application/pdf":          {},
	"application/x-pdf":        {},
	"application/octet-stream": {},
}

// IsAllowedExt reports whether ext (with or without dot) can be ingested.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

const (
	ExtPDF = "pdf"
	ExtTXT = "txt"
)
