package store

import "strings"

// schema returns the DDL for dialect. Dates are stored as ISO strings so both
// databases scan them the same way.
func schema(d Dialect) []string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d == Postgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS keywords (
			id {{ID}},
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			published_date TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id {{ID}},
			keyword_id BIGINT NOT NULL REFERENCES keywords(id) ON DELETE CASCADE,
			facet TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			summary TEXT NOT NULL,
			published_date TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_keyword ON articles(keyword_id)`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id {{ID}},
			article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			question TEXT NOT NULL,
			options TEXT NOT NULL,
			answer INTEGER NOT NULL,
			explanation TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quizzes_article ON quizzes(article_id)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id {{ID}},
			keyword_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			claimed_by TEXT,
			error TEXT NOT NULL DEFAULT '',
			enqueued_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status, id)`,
	}
	for i, s := range stmts {
		stmts[i] = strings.ReplaceAll(s, "{{ID}}", id)
	}
	return stmts
}
