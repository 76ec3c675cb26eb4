// Package writer produces the articles, summaries and quizzes for a keyword
// through a Generator.
package writer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Facet names one angle of a keyword that gets its own article.
type Facet string

const (
	FacetConcept      Facet = "concept"
	FacetExample      Facet = "example"
	FacetRelatedTerms Facet = "related-terms"
	FacetImportance   Facet = "importance"
	FacetInDepth      Facet = "in-depth"
)

// Facets lists the five article facets in publication order.
var Facets = []Facet{FacetConcept, FacetExample, FacetRelatedTerms, FacetImportance, FacetInDepth}

// DefaultQuizCount is the number of questions requested per article.
const DefaultQuizCount = 3

// Subject is the keyword being written about.
type Subject struct {
	Name        string
	Description string
}

// Piece is one generated article body.
type Piece struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p *Piece) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("piece has no title")
	}
	if strings.TrimSpace(p.Content) == "" {
		return errors.New("piece has no content")
	}
	return nil
}

// QuizItem is a multiple-choice question. Answer indexes Options.
type QuizItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation"`
}

func (q QuizItem) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("quiz item has no question")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("quiz item %q needs at least two options", q.Question)
	}
	if q.Answer < 0 || q.Answer >= len(q.Options) {
		return fmt.Errorf("quiz item %q answer %d out of range", q.Question, q.Answer)
	}
	return nil
}

type quizSet struct {
	Quizzes []QuizItem `json:"quizzes"`
}

func (s *quizSet) Validate() error {
	if len(s.Quizzes) == 0 {
		return errors.New("no quiz items")
	}
	for _, q := range s.Quizzes {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

var pieceSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"title":   {Type: jsonschema.String, Description: "Article title"},
		"content": {Type: jsonschema.String, Description: "Article body in Markdown"},
	},
	Required: []string{"title", "content"},
}

var quizSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"quizzes": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"question":    {Type: jsonschema.String},
					"options":     {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
					"answer":      {Type: jsonschema.Integer, Description: "Zero-based index into options"},
					"explanation": {Type: jsonschema.String},
				},
				Required: []string{"question", "options", "answer", "explanation"},
			},
		},
	},
	Required: []string{"quizzes"},
}

// Writer turns a subject and grounding context into content.
type Writer struct {
	Gen   Generator
	Model string
	// Language is an optional output language hint such as "ko".
	Language  string
	QuizCount int
}

// Piece writes the article for one facet.
func (w *Writer) Piece(ctx context.Context, s Subject, facet Facet, grounding string) (Piece, error) {
	var p Piece
	if err := w.Gen.Object(ctx, w.Model, pieceSchema, piecePrompt(s, facet, grounding, w.Language), &p); err != nil {
		return Piece{}, fmt.Errorf("%s piece: %w", facet, err)
	}
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	return p, nil
}

// Summary condenses an article into a few sentences.
func (w *Writer) Summary(ctx context.Context, p Piece) (string, error) {
	out, err := w.Gen.Text(ctx, w.Model, summaryPrompt(p, w.Language))
	if err != nil {
		return "", fmt.Errorf("summary of %q: %w", p.Title, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("summary of %q: %w: empty summary", p.Title, ErrGeneration)
	}
	return out, nil
}

// Quiz writes multiple-choice questions about one article.
func (w *Writer) Quiz(ctx context.Context, s Subject, p Piece) ([]QuizItem, error) {
	n := w.QuizCount
	if n <= 0 {
		n = DefaultQuizCount
	}
	var set quizSet
	if err := w.Gen.Object(ctx, w.Model, quizSchema, quizPrompt(s, p, n, w.Language), &set); err != nil {
		return nil, fmt.Errorf("quiz for %q: %w", p.Title, err)
	}
	return set.Quizzes, nil
}
