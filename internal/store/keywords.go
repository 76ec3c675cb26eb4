package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrKeywordNotFound is returned when no keyword has the requested id.
var ErrKeywordNotFound = errors.New("keyword not found")

// DateLayout is the storage format of publish dates.
const DateLayout = "2006-01-02"

// Keyword is a topic to write about. PublishedDate may be unset.
type Keyword struct {
	ID            int64
	Name          string
	Description   string
	PublishedDate *time.Time
}

func (s *Store) Keyword(ctx context.Context, id int64) (Keyword, error) {
	var k Keyword
	var published sql.NullString
	err := s.db.QueryRowContext(ctx, s.Rebind(`SELECT id, name, description, published_date FROM keywords WHERE id = ?`), id).
		Scan(&k.ID, &k.Name, &k.Description, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return Keyword{}, fmt.Errorf("%w: %d", ErrKeywordNotFound, id)
	}
	if err != nil {
		return Keyword{}, fmt.Errorf("query keyword %d: %w", id, err)
	}
	if published.Valid && published.String != "" {
		t, err := time.Parse(DateLayout, published.String)
		if err != nil {
			return Keyword{}, fmt.Errorf("keyword %d: bad published_date %q: %w", id, published.String, err)
		}
		k.PublishedDate = &t
	}
	return k, nil
}

// AddKeyword inserts k and returns its new id.
func (s *Store) AddKeyword(ctx context.Context, k Keyword) (int64, error) {
	var published sql.NullString
	if k.PublishedDate != nil {
		published = sql.NullString{String: k.PublishedDate.Format(DateLayout), Valid: true}
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		s.Rebind(`INSERT INTO keywords (name, description, published_date, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		k.Name, k.Description, published, now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert keyword: %w", err)
	}
	return id, nil
}

func (s *Store) ListKeywords(ctx context.Context) ([]Keyword, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, published_date FROM keywords ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()
	var out []Keyword
	for rows.Next() {
		var k Keyword
		var published sql.NullString
		if err := rows.Scan(&k.ID, &k.Name, &k.Description, &published); err != nil {
			return nil, err
		}
		if published.Valid && published.String != "" {
			if t, err := time.Parse(DateLayout, published.String); err == nil {
				k.PublishedDate = &t
			}
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }
