package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Quiz is a multiple-choice question attached to an article.
type Quiz struct {
	ID          int64
	ArticleID   int64
	Question    string
	Options     []string
	Answer      int
	Explanation string
}

// HasQuizzes reports whether any of the keyword's articles has a quiz.
func (s *Store) HasQuizzes(ctx context.Context, keywordID int64) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM quizzes q JOIN articles a ON a.id = q.article_id WHERE a.keyword_id = ? LIMIT 1`, keywordID)
}

// InsertQuizzes stores all quizzes in one transaction.
func (s *Store) InsertQuizzes(ctx context.Context, quizzes []Quiz) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.Rebind(`INSERT INTO quizzes
			(article_id, question, options, answer, explanation, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare quiz insert: %w", err)
		}
		defer stmt.Close()
		created := now()
		for _, q := range quizzes {
			opts, err := json.Marshal(q.Options)
			if err != nil {
				return fmt.Errorf("encode options: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, q.ArticleID, q.Question, string(opts), q.Answer, q.Explanation, created); err != nil {
				return fmt.Errorf("insert quiz for article %d: %w", q.ArticleID, err)
			}
		}
		return nil
	})
}

// ListQuizzes returns the quizzes for every article of the keyword, grouped
// by article in insertion order.
func (s *Store) ListQuizzes(ctx context.Context, keywordID int64) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, s.Rebind(`SELECT q.id, q.article_id, q.question, q.options, q.answer, q.explanation
		FROM quizzes q JOIN articles a ON a.id = q.article_id
		WHERE a.keyword_id = ? ORDER BY q.article_id, q.id`), keywordID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	var out []Quiz
	for rows.Next() {
		var q Quiz
		var opts string
		if err := rows.Scan(&q.ID, &q.ArticleID, &q.Question, &opts, &q.Answer, &q.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, fmt.Errorf("quiz %d: decode options: %w", q.ID, err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
