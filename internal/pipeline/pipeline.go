// Package pipeline decides what content a keyword still needs and produces
// it: search, crawl, rank, then articles and quizzes.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/termforge/internal/crawl"
	"github.com/hyperifyio/termforge/internal/rank"
	"github.com/hyperifyio/termforge/internal/search"
	"github.com/hyperifyio/termforge/internal/store"
	"github.com/hyperifyio/termforge/internal/writer"
)

var (
	// ErrContentsAlreadyExist means the keyword already has articles and
	// quizzes. The job is redundant, not failed.
	ErrContentsAlreadyExist = errors.New("contents already exist")
	// ErrPublishDateMissing means articles cannot be dated.
	ErrPublishDateMissing = errors.New("keyword has no publish date")
)

// Stage is the work a keyword still needs.
type Stage int

const (
	FullGeneration Stage = iota
	QuizOnly
)

func (s Stage) String() string {
	if s == QuizOnly {
		return "quiz-only"
	}
	return "full"
}

// Store is the persistence the pipeline needs.
type Store interface {
	Keyword(ctx context.Context, id int64) (store.Keyword, error)
	HasArticles(ctx context.Context, keywordID int64) (bool, error)
	ListArticles(ctx context.Context, keywordID int64) ([]store.Article, error)
	HasQuizzes(ctx context.Context, keywordID int64) (bool, error)
	InsertArticles(ctx context.Context, articles []store.Article) ([]store.Article, error)
	InsertQuizzes(ctx context.Context, quizzes []store.Quiz) error
}

type Crawler interface {
	CrawlAll(ctx context.Context, results []search.Result) []crawl.Document
}

type ContentWriter interface {
	Piece(ctx context.Context, s writer.Subject, facet writer.Facet, grounding string) (writer.Piece, error)
	Summary(ctx context.Context, p writer.Piece) (string, error)
	Quiz(ctx context.Context, s writer.Subject, p writer.Piece) ([]writer.QuizItem, error)
}

// Orchestrator runs the pipeline for one keyword at a time.
type Orchestrator struct {
	Store   Store
	Search  search.Provider
	Crawler Crawler
	Writer  ContentWriter

	// TopK bounds the grounding documents. Zero means rank.DefaultTopK.
	TopK int
	// MaxContentLength bounds rankable documents in bytes. Zero means
	// rank.DefaultMaxContentLength.
	MaxContentLength int
	RankOptions      []rank.Option
}

// GenerateContents brings the keyword to the state of having five articles
// and their quizzes. A keyword with articles but no quizzes only gets quizzes.
func (o *Orchestrator) GenerateContents(ctx context.Context, keywordID int64) error {
	kw, stage, err := o.Plan(ctx, keywordID)
	if err != nil {
		return err
	}
	logger := log.With().Int64("keyword", kw.ID).Str("name", kw.Name).Str("stage", stage.String()).Logger()
	logger.Info().Msg("pipeline start")

	if stage == FullGeneration {
		if kw.PublishedDate == nil {
			return fmt.Errorf("keyword %d: %w", kw.ID, ErrPublishDateMissing)
		}
		query := BuildQuery(kw.Name, kw.Description)
		ranked, err := o.Discover(ctx, query)
		if err != nil {
			return err
		}
		grounding, err := Grounding(ranked)
		if err != nil {
			return err
		}
		if _, err := o.writeArticles(ctx, kw, grounding); err != nil {
			return err
		}
		logger.Info().Msg("articles stored")
	}

	articles, err := o.Store.ListArticles(ctx, kw.ID)
	if err != nil {
		return fmt.Errorf("list articles: %w", err)
	}
	n, err := o.writeQuizzes(ctx, kw, articles)
	if err != nil {
		return err
	}
	logger.Info().Int("articles", len(articles)).Int("quizzes", n).Msg("pipeline done")
	return nil
}

// Plan resolves the keyword and decides which stage to run. It has no side
// effects.
func (o *Orchestrator) Plan(ctx context.Context, keywordID int64) (store.Keyword, Stage, error) {
	kw, err := o.Store.Keyword(ctx, keywordID)
	if err != nil {
		return store.Keyword{}, 0, err
	}
	hasArticles, err := o.Store.HasArticles(ctx, kw.ID)
	if err != nil {
		return store.Keyword{}, 0, fmt.Errorf("check articles: %w", err)
	}
	if !hasArticles {
		return kw, FullGeneration, nil
	}
	hasQuizzes, err := o.Store.HasQuizzes(ctx, kw.ID)
	if err != nil {
		return store.Keyword{}, 0, fmt.Errorf("check quizzes: %w", err)
	}
	if hasQuizzes {
		return store.Keyword{}, 0, fmt.Errorf("keyword %d: %w", kw.ID, ErrContentsAlreadyExist)
	}
	return kw, QuizOnly, nil
}

// Discover searches for query, crawls every candidate, and returns the
// documents ranked against the same query.
func (o *Orchestrator) Discover(ctx context.Context, query string) ([]rank.Result, error) {
	results, err := o.Search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	results = search.Dedupe(results)
	docs := o.Crawler.CrawlAll(ctx, results)

	rankable := make([]rank.Document, 0, len(docs))
	for _, d := range docs {
		rankable = append(rankable, rank.Document{Title: d.Title, Content: d.Content()})
	}
	rankable = rank.Filter(rankable, o.MaxContentLength)
	engine := rank.New(rankable, o.RankOptions...)
	ranked := engine.Search(query, o.TopK)
	log.Info().Str("query", query).Int("results", len(results)).Int("crawled", len(docs)).
		Int("indexed", engine.Len()).Int("ranked", len(ranked)).Msg("discovery complete")
	if len(ranked) == 0 {
		log.Warn().Str("query", query).Msg("no ranked documents; generating without grounding")
	}
	return ranked, nil
}

// BuildQuery joins the keyword name with the first sentence of its
// description.
func BuildQuery(name, description string) string {
	name = strings.TrimSpace(name)
	first := firstSentence(description)
	if first == "" {
		return name
	}
	return name + " " + first
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		switch r {
		case '.', '!', '?', '。', '！', '？':
			end := i + utf8.RuneLen(r)
			if end == len(s) || r >= 0x3000 {
				return strings.TrimSpace(s[:end])
			}
			if next, _ := utf8.DecodeRuneInString(s[end:]); unicode.IsSpace(next) {
				return strings.TrimSpace(s[:end])
			}
		}
	}
	return s
}

// Grounding serializes ranked documents as a JSON array of {title, content}.
func Grounding(ranked []rank.Result) (string, error) {
	docs := make([]rank.Document, 0, len(ranked))
	for _, r := range ranked {
		docs = append(docs, r.Document)
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("encode grounding: %w", err)
	}
	return string(b), nil
}

func (o *Orchestrator) writeArticles(ctx context.Context, kw store.Keyword, grounding string) ([]store.Article, error) {
	subject := writer.Subject{Name: kw.Name, Description: kw.Description}

	pieces := make([]writer.Piece, len(writer.Facets))
	var g errgroup.Group
	for i, facet := range writer.Facets {
		g.Go(func() error {
			p, err := o.Writer.Piece(ctx, subject, facet, grounding)
			if err != nil {
				return err
			}
			pieces[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate articles: %w", err)
	}

	summaries := make([]string, len(pieces))
	var sg errgroup.Group
	for i, p := range pieces {
		sg.Go(func() error {
			s, err := o.Writer.Summary(ctx, p)
			if err != nil {
				return err
			}
			summaries[i] = s
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		return nil, fmt.Errorf("generate summaries: %w", err)
	}

	articles := make([]store.Article, len(pieces))
	for i, p := range pieces {
		articles[i] = store.Article{
			KeywordID:     kw.ID,
			Facet:         string(writer.Facets[i]),
			Title:         p.Title,
			Content:       p.Content,
			Summary:       summaries[i],
			PublishedDate: *kw.PublishedDate,
		}
	}
	saved, err := o.Store.InsertArticles(ctx, articles)
	if err != nil {
		return nil, fmt.Errorf("store articles: %w", err)
	}
	return saved, nil
}

func (o *Orchestrator) writeQuizzes(ctx context.Context, kw store.Keyword, articles []store.Article) (int, error) {
	subject := writer.Subject{Name: kw.Name, Description: kw.Description}
	perArticle := make([][]writer.QuizItem, len(articles))
	var g errgroup.Group
	for i, a := range articles {
		g.Go(func() error {
			items, err := o.Writer.Quiz(ctx, subject, writer.Piece{Title: a.Title, Content: a.Content})
			if err != nil {
				return err
			}
			perArticle[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("generate quizzes: %w", err)
	}
	var quizzes []store.Quiz
	for i, items := range perArticle {
		for _, it := range items {
			quizzes = append(quizzes, store.Quiz{
				ArticleID:   articles[i].ID,
				Question:    it.Question,
				Options:     it.Options,
				Answer:      it.Answer,
				Explanation: it.Explanation,
			})
		}
	}
	if err := o.Store.InsertQuizzes(ctx, quizzes); err != nil {
		return 0, fmt.Errorf("store quizzes: %w", err)
	}
	return len(quizzes), nil
}
