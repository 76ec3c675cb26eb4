package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultPollInterval is how long an idle worker waits before polling again.
const DefaultPollInterval = 2 * time.Second

// Processor runs one keyword job end to end.
type Processor interface {
	GenerateContents(ctx context.Context, keywordID int64) error
}

// Worker claims and processes one job at a time until its context ends.
type Worker struct {
	Queue        *Queue
	Processor    Processor
	PollInterval time.Duration
	// Conflict reports whether err means the job was redundant rather than
	// failed.
	Conflict func(error) bool

	token string
}

// Token identifies this worker's claims.
func (w *Worker) Token() string {
	if w.token == "" {
		w.token = uuid.NewString()
	}
	return w.token
}

// Run polls until ctx is cancelled. Individual job failures are recorded on
// the job and never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	interval := w.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log.Info().Str("worker", w.Token()).Msg("worker started")
	for {
		processed, err := w.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("worker: claim failed")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if processed {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// RunOnce claims and processes a single job. It reports false when there was
// nothing to do.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.Queue.Claim(ctx, w.Token())
	if errors.Is(err, ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	logger := log.With().Int64("job", job.ID).Int64("keyword", job.KeywordID).Logger()
	logger.Info().Msg("job claimed")
	start := time.Now()

	status, msg := StatusDone, ""
	if perr := w.Processor.GenerateContents(ctx, job.KeywordID); perr != nil {
		msg = perr.Error()
		if w.Conflict != nil && w.Conflict(perr) {
			status = StatusConflict
			logger.Info().Err(perr).Msg("job redundant")
		} else {
			status = StatusFailed
			logger.Error().Err(perr).Msg("job failed")
		}
	}
	// Record the outcome even if the worker is shutting down.
	if err := w.Queue.Complete(context.WithoutCancel(ctx), job.ID, status, msg); err != nil {
		return true, err
	}
	logger.Info().Str("status", string(status)).Dur("elapsed", time.Since(start)).Msg("job finished")
	return true, nil
}
