package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// FromPDF extracts paragraph blocks from a PDF body, page by page, applying
// the same length and dedupe rules as FromHTML. The title comes from the
// document info dictionary when present.
func FromPDF(input []byte, minLen int) (doc Document, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return Document{}, fmt.Errorf("parse pdf: %w", err)
	}
	doc.Title = normalize(r.Trailer().Key("Info").Key("Title").Text())

	var blocks blockSet
	blocks.minLen = minLen
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, para := range paragraphBreak.Split(text, -1) {
			if strings.TrimSpace(para) != "" {
				blocks.add(para)
			}
		}
	}
	doc.Texts = blocks.texts
	return doc, nil
}
