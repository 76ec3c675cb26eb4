package search

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when no locale hint is configured.
const DefaultLocale = "en-US"

// Locale carries the language and country hints sent to providers.
type Locale struct {
	Language string // ISO 639-1, e.g. "ko"
	Country  string // ISO 3166-1 alpha-2, e.g. "KR"
}

// ParseLocale converts a BCP 47 tag like "ko-KR" into provider hints. A bare
// language tag gets the most likely country for that language.
func ParseLocale(tag string) (Locale, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = DefaultLocale
	}
	t, err := language.Parse(tag)
	if err != nil {
		return Locale{}, fmt.Errorf("parse locale %q: %w", tag, err)
	}
	base, _ := t.Base()
	loc := Locale{Language: base.String()}
	if region, conf := t.Region(); conf != language.No {
		loc.Country = region.String()
	}
	return loc, nil
}

func (l Locale) String() string {
	if l.Country == "" {
		return l.Language
	}
	return l.Language + "-" + l.Country
}
