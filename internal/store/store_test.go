package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "termforge.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func date(s string) *time.Time {
	t, _ := time.Parse(DateLayout, s)
	return &t
}

func TestDetectDialectAndRebind(t *testing.T) {
	if DetectDialect("postgres://u@h/db") != Postgres || DetectDialect("postgresql://h/db") != Postgres {
		t.Fatalf("postgres urls not detected")
	}
	if DetectDialect("/tmp/x.db") != SQLite || DetectDialect("file:x.db?mode=rwc") != SQLite {
		t.Fatalf("sqlite paths not detected")
	}
	pg := &Store{dialect: Postgres}
	if got := pg.Rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("rebind = %q", got)
	}
	lite := &Store{dialect: SQLite}
	if got := lite.Rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}
}

func TestSqlitePragmas(t *testing.T) {
	got := sqlitePragmas("x.db")
	if got != "x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Fatalf("pragmas = %q", got)
	}
	if got := sqlitePragmas("x.db?_pragma=busy_timeout(100)"); got != "x.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)" {
		t.Fatalf("existing pragma duplicated: %q", got)
	}
}

func TestKeyword_RoundTripAndNotFound(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	id, err := s.AddKeyword(ctx, Keyword{Name: "inflation", Description: "Prices rise.", PublishedDate: date("2024-01-02")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	k, err := s.Keyword(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if k.Name != "inflation" || k.PublishedDate == nil || k.PublishedDate.Format(DateLayout) != "2024-01-02" {
		t.Fatalf("unexpected keyword: %+v", k)
	}
	noDate, _ := s.AddKeyword(ctx, Keyword{Name: "deflation"})
	k, err = s.Keyword(ctx, noDate)
	if err != nil || k.PublishedDate != nil {
		t.Fatalf("expected nil published date: %+v %v", k, err)
	}
	if _, err := s.Keyword(ctx, 9999); !errors.Is(err, ErrKeywordNotFound) {
		t.Fatalf("want ErrKeywordNotFound, got %v", err)
	}
	all, err := s.ListKeywords(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("list = %+v, %v", all, err)
	}
}

func TestArticlesAndQuizzes(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	kid, _ := s.AddKeyword(ctx, Keyword{Name: "inflation", PublishedDate: date("2024-01-02")})

	if ok, err := s.HasArticles(ctx, kid); err != nil || ok {
		t.Fatalf("HasArticles on empty = %v, %v", ok, err)
	}
	in := []Article{
		{KeywordID: kid, Facet: "concept", Title: "A", Content: "a", Summary: "sa", PublishedDate: *date("2024-01-02")},
		{KeywordID: kid, Facet: "example", Title: "B", Content: "b", Summary: "sb", PublishedDate: *date("2024-01-02")},
	}
	saved, err := s.InsertArticles(ctx, in)
	if err != nil {
		t.Fatalf("insert articles: %v", err)
	}
	if saved[0].ID == 0 || saved[1].ID == 0 || saved[0].ID == saved[1].ID {
		t.Fatalf("ids not assigned: %+v", saved)
	}
	if ok, _ := s.HasArticles(ctx, kid); !ok {
		t.Fatalf("HasArticles should be true")
	}
	list, err := s.ListArticles(ctx, kid)
	if err != nil || len(list) != 2 || list[0].Title != "A" || list[1].Summary != "sb" {
		t.Fatalf("list articles = %+v, %v", list, err)
	}

	if ok, _ := s.HasQuizzes(ctx, kid); ok {
		t.Fatalf("HasQuizzes should be false")
	}
	err = s.InsertQuizzes(ctx, []Quiz{
		{ArticleID: saved[0].ID, Question: "Q1", Options: []string{"x", "y"}, Answer: 1, Explanation: "e"},
		{ArticleID: saved[1].ID, Question: "Q2", Options: []string{"x", "y", "z"}, Answer: 0},
	})
	if err != nil {
		t.Fatalf("insert quizzes: %v", err)
	}
	if ok, _ := s.HasQuizzes(ctx, kid); !ok {
		t.Fatalf("HasQuizzes should be true")
	}
	qs, err := s.ListQuizzes(ctx, kid)
	if err != nil || len(qs) != 2 || qs[1].Options[2] != "z" || qs[0].Answer != 1 {
		t.Fatalf("list quizzes = %+v, %v", qs, err)
	}
}

func TestInsertArticles_AllOrNothing(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	kid, _ := s.AddKeyword(ctx, Keyword{Name: "k"})
	_, err := s.InsertArticles(ctx, []Article{
		{KeywordID: kid, Facet: "concept", Title: "ok", Content: "c", Summary: "s"},
		{KeywordID: 424242, Facet: "example", Title: "orphan", Content: "c", Summary: "s"},
	})
	if err == nil {
		t.Fatalf("expected foreign key failure")
	}
	if ok, _ := s.HasArticles(ctx, kid); ok {
		t.Fatalf("partial article batch was committed")
	}
}

func TestInsertQuizzes_AllOrNothing(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	kid, _ := s.AddKeyword(ctx, Keyword{Name: "k"})
	saved, _ := s.InsertArticles(ctx, []Article{{KeywordID: kid, Facet: "concept", Title: "t", Content: "c", Summary: "s"}})
	err := s.InsertQuizzes(ctx, []Quiz{
		{ArticleID: saved[0].ID, Question: "Q", Options: []string{"a", "b"}},
		{ArticleID: 999, Question: "orphan", Options: []string{"a", "b"}},
	})
	if err == nil {
		t.Fatalf("expected foreign key failure")
	}
	if ok, _ := s.HasQuizzes(ctx, kid); ok {
		t.Fatalf("partial quiz batch was committed")
	}
}
