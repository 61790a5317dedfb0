package nlp

import "strings"

type documentKind int

const (
	kindText documentKind = iota
	kindPages
	kindResult
)

// Page is the full text of one OCR page.
type Page struct {
	Number   int    `json:"page_number"`
	FullText string `json:"full_text"`
}

// Result is a pre-parsed OCR result carrying flat text.
type Result struct {
	Text string `json:"text"`
}

// Document is the raw OCR output of one invoice: flat text, an ordered list
// of pages or a pre-parsed result. The zero value is an empty text.
type Document struct {
	kind   documentKind
	text   string
	pages  []Page
	result Result
}

func FromText(s string) Document { return Document{kind: kindText, text: s} }

func FromPages(pages []Page) Document { return Document{kind: kindPages, pages: pages} }

func FromResult(r Result) Document { return Document{kind: kindResult, result: r} }

// Text coalesces the document into one string. Pages are joined with a
// newline in the order given.
func (d Document) Text() string {
	switch d.kind {
	case kindPages:
		parts := make([]string, len(d.pages))
		for i, p := range d.pages {
			parts[i] = p.FullText
		}
		return strings.Join(parts, "\n")
	case kindResult:
		return d.result.Text
	}
	return d.text
}

// Empty reports whether the coalesced text has no visible content.
func (d Document) Empty() bool { return strings.TrimSpace(d.Text()) == "" }
