// Package queue is a small database-backed job queue for keyword generation
// and the worker loop that drains it.
package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperifyio/termforge/internal/store"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending  Status = "pending"
	StatusClaimed  Status = "claimed"
	StatusDone     Status = "done"
	StatusFailed   Status = "failed"
	StatusConflict Status = "conflict"
)

// ErrEmpty is returned by Claim when no job is pending.
var ErrEmpty = errors.New("no pending jobs")

type Job struct {
	ID        int64
	KeywordID int64
	Status    Status
	Error     string
}

// Queue stores jobs in the jobs table of a Store.
type Queue struct {
	Store *store.Store
}

func (q *Queue) Enqueue(ctx context.Context, keywordID int64) (int64, error) {
	ts := time.Now().UTC().Format(time.RFC3339)
	var id int64
	err := q.Store.DB().QueryRowContext(ctx,
		q.Store.Rebind(`INSERT INTO jobs (keyword_id, status, enqueued_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id`),
		keywordID, string(StatusPending), ts, ts).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("enqueue keyword %d: %w", keywordID, err)
	}
	return id, nil
}

// Claim atomically marks the oldest pending job as claimed by token and
// returns it. A claimer that loses a race for the same row gets ErrEmpty and
// polls again.
func (q *Queue) Claim(ctx context.Context, token string) (Job, error) {
	ts := time.Now().UTC().Format(time.RFC3339)
	// The outer status check makes a racing claimer under READ COMMITTED
	// match nothing once the first claim commits.
	var j Job
	var status string
	err := q.Store.DB().QueryRowContext(ctx, q.Store.Rebind(`UPDATE jobs SET status = ?, claimed_by = ?, updated_at = ?
		WHERE status = ? AND id IN (SELECT id FROM jobs WHERE status = ? ORDER BY id LIMIT 1)
		RETURNING id, keyword_id, status, error`),
		string(StatusClaimed), token, ts, string(StatusPending), string(StatusPending)).
		Scan(&j.ID, &j.KeywordID, &status, &j.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrEmpty
	}
	if err != nil {
		return Job{}, fmt.Errorf("claim: %w", err)
	}
	j.Status = Status(status)
	return j, nil
}

// Complete records the final status of a job.
func (q *Queue) Complete(ctx context.Context, id int64, status Status, msg string) error {
	_, err := q.Store.DB().ExecContext(ctx,
		q.Store.Rebind(`UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`),
		string(status), msg, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("complete job %d: %w", id, err)
	}
	return nil
}

func (q *Queue) Get(ctx context.Context, id int64) (Job, error) {
	var j Job
	var status string
	err := q.Store.DB().QueryRowContext(ctx,
		q.Store.Rebind(`SELECT id, keyword_id, status, error FROM jobs WHERE id = ?`), id).
		Scan(&j.ID, &j.KeywordID, &status, &j.Error)
	if err != nil {
		return Job{}, fmt.Errorf("get job %d: %w", id, err)
	}
	j.Status = Status(status)
	return j, nil
}
