// Package extract turns fetched HTML or PDF bodies into deduplicated blocks of
// readable text.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinTextLength is the minimum rune count for a block to be kept.
const DefaultMinTextLength = 50

// removeSelector lists elements that never carry article text.
const removeSelector = "script, style, noscript, nav, header, footer, aside, form, iframe, svg, img, video, audio, canvas, picture, button, input, select, textarea, template"

// contentSelector lists elements scanned for text blocks.
const contentSelector = "article, section, p, blockquote, dl, dt, dd, ul, ol, li, div, main, pre, td"

// Document is the readable content of one page.
type Document struct {
	Title string
	Texts []string
}

// FromHTML parses input and returns its title and content blocks. A block is
// the text of an allow-listed element that contains no other allow-listed
// element. Blocks shorter than minLen runes are dropped and repeats collapse
// to their first occurrence.
func FromHTML(input []byte, minLen int) (Document, error) {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)
	title := normalize(doc.Find("title").First().Text())

	doc.Find(removeSelector).Remove()

	var blocks blockSet
	blocks.minLen = minLen
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(contentSelector).Length() > 0 {
			return
		}
		blocks.add(s.Text())
	})
	return Document{Title: title, Texts: blocks.texts}, nil
}

// normalize collapses runs of whitespace, trims, and applies NFC so visually
// identical blocks compare equal.
func normalize(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// blockSet accumulates normalized, length-filtered, unique texts in order.
type blockSet struct {
	minLen int
	seen   map[string]struct{}
	texts  []string
}

func (b *blockSet) add(raw string) {
	text := normalize(raw)
	if text == "" || utf8.RuneCountInString(text) < b.minLen {
		return
	}
	if b.seen == nil {
		b.seen = make(map[string]struct{})
	}
	if _, dup := b.seen[text]; dup {
		return
	}
	b.seen[text] = struct{}{}
	b.texts = append(b.texts, text)
}
