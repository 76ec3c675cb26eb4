package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hyperifyio/termforge/internal/crawl"
	"github.com/hyperifyio/termforge/internal/search"
	"github.com/hyperifyio/termforge/internal/store"
	"github.com/hyperifyio/termforge/internal/writer"
)

type memStore struct {
	mu       sync.Mutex
	keywords map[int64]store.Keyword
	articles []store.Article
	quizzes  []store.Quiz
	writes   int
	nextID   int64
}

func newMemStore(kws ...store.Keyword) *memStore {
	m := &memStore{keywords: map[int64]store.Keyword{}}
	for _, k := range kws {
		m.keywords[k.ID] = k
	}
	return m
}

func (m *memStore) Keyword(_ context.Context, id int64) (store.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keywords[id]
	if !ok {
		return store.Keyword{}, fmt.Errorf("%w: %d", store.ErrKeywordNotFound, id)
	}
	return k, nil
}

func (m *memStore) HasArticles(_ context.Context, kid int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.KeywordID == kid {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListArticles(_ context.Context, kid int64) ([]store.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Article
	for _, a := range m.articles {
		if a.KeywordID == kid {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) HasQuizzes(_ context.Context, kid int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.quizzes {
		for _, a := range m.articles {
			if a.ID == q.ArticleID && a.KeywordID == kid {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memStore) InsertArticles(_ context.Context, in []store.Article) ([]store.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	out := make([]store.Article, len(in))
	for i, a := range in {
		m.nextID++
		a.ID = m.nextID
		out[i] = a
	}
	m.articles = append(m.articles, out...)
	return out, nil
}

func (m *memStore) InsertQuizzes(_ context.Context, in []store.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.quizzes = append(m.quizzes, in...)
	return nil
}

type fakeSearch struct {
	calls   int32
	queries []string
	results []search.Result
	err     error
}

func (f *fakeSearch) Name() string { return "fake" }

func (f *fakeSearch) Search(_ context.Context, q string) ([]search.Result, error) {
	atomic.AddInt32(&f.calls, 1)
	f.queries = append(f.queries, q)
	return f.results, f.err
}

type fakeCrawler struct {
	calls int32
	docs  []crawl.Document
}

func (f *fakeCrawler) CrawlAll(_ context.Context, _ []search.Result) []crawl.Document {
	atomic.AddInt32(&f.calls, 1)
	return f.docs
}

type fakeWriter struct {
	pieces    int32
	summaries int32
	quizzes   int32
	grounding atomic.Value
	pieceErr  error
	quizErr   error
}

func (f *fakeWriter) Piece(_ context.Context, s writer.Subject, facet writer.Facet, grounding string) (writer.Piece, error) {
	atomic.AddInt32(&f.pieces, 1)
	f.grounding.Store(grounding)
	if f.pieceErr != nil && facet == writer.FacetImportance {
		return writer.Piece{}, f.pieceErr
	}
	return writer.Piece{Title: s.Name + " " + string(facet), Content: "content about " + string(facet)}, nil
}

func (f *fakeWriter) Summary(_ context.Context, p writer.Piece) (string, error) {
	atomic.AddInt32(&f.summaries, 1)
	return "summary of " + p.Title, nil
}

func (f *fakeWriter) Quiz(_ context.Context, _ writer.Subject, p writer.Piece) ([]writer.QuizItem, error) {
	atomic.AddInt32(&f.quizzes, 1)
	if f.quizErr != nil {
		return nil, f.quizErr
	}
	return []writer.QuizItem{{Question: "About " + p.Title + "?", Options: []string{"a", "b"}, Answer: 0}}, nil
}
