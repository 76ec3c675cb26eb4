package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Article struct {
	ID            int64
	KeywordID     int64
	Facet         string
	Title         string
	Content       string
	Summary       string
	PublishedDate time.Time
}

// HasArticles reports whether any article exists for the keyword.
func (s *Store) HasArticles(ctx context.Context, keywordID int64) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM articles WHERE keyword_id = ? LIMIT 1`, keywordID)
}

// ListArticles returns the keyword's articles in insertion order.
func (s *Store) ListArticles(ctx context.Context, keywordID int64) ([]Article, error) {
	rows, err := s.db.QueryContext(ctx,
		s.Rebind(`SELECT id, keyword_id, facet, title, content, summary, published_date FROM articles WHERE keyword_id = ? ORDER BY id`),
		keywordID)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	var out []Article
	for rows.Next() {
		var a Article
		var published string
		if err := rows.Scan(&a.ID, &a.KeywordID, &a.Facet, &a.Title, &a.Content, &a.Summary, &published); err != nil {
			return nil, err
		}
		if a.PublishedDate, err = time.Parse(DateLayout, published); err != nil {
			return nil, fmt.Errorf("article %d: bad published_date %q: %w", a.ID, published, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// InsertArticles stores all articles in one transaction and returns them with
// their ids. Either every article is stored or none is.
func (s *Store) InsertArticles(ctx context.Context, articles []Article) ([]Article, error) {
	out := make([]Article, len(articles))
	copy(out, articles)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.Rebind(`INSERT INTO articles
			(keyword_id, facet, title, content, summary, published_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`))
		if err != nil {
			return fmt.Errorf("prepare article insert: %w", err)
		}
		defer stmt.Close()
		created := now()
		for i := range out {
			a := &out[i]
			if err := stmt.QueryRowContext(ctx, a.KeywordID, a.Facet, a.Title, a.Content, a.Summary,
				a.PublishedDate.Format(DateLayout), created).Scan(&a.ID); err != nil {
				return fmt.Errorf("insert article %q: %w", a.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.Rebind(query), args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
