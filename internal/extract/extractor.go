package extract

import (
	"strings"
)

// Extractor is the seam between fetching and text extraction.
type Extractor interface {
	Extract(body []byte, contentType string) (Document, error)
}

// Blocks selects the parser by content type.
type Blocks struct {
	// MinTextLength is the minimum block length in runes. Zero means
	// DefaultMinTextLength.
	MinTextLength int
}

func (b Blocks) Extract(body []byte, contentType string) (Document, error) {
	minLen := b.MinTextLength
	if minLen <= 0 {
		minLen = DefaultMinTextLength
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/pdf") {
		return FromPDF(body, minLen)
	}
	return FromHTML(body, minLen)
}
