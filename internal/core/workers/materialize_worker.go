package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

// CalendarRepository is the narrow slice of the entry repository the
// worker needs.
type CalendarRepository interface {
	MarkDebtDays(ctx context.Context, userID string, dates []string) error
}

// MaterializeJob expands one computed debt period into per-day calendar
// entries.
type MaterializeJob struct {
	UserID string
	Start  time.Time
	End    time.Time

	attempts int
}

const (
	defaultChunkSize      = 500
	maxJobAttempts        = 3
	defaultEnqueueTimeout = 2 * time.Second
)

// MaterializeWorker expands debt periods in the background. Periods can
// span decades (tens of thousands of days), so the expansion runs as
// bounded-size batched upserts rather than one round-trip per day, and a
// failed job is re-enqueued from the first unwritten chunk so completed
// chunks are never re-derived.
type MaterializeWorker struct {
	repo           CalendarRepository
	jobs           chan MaterializeJob
	chunkSize      int
	enqueueTimeout time.Duration
}

func NewMaterializeWorker(repo CalendarRepository) *MaterializeWorker {
	return &MaterializeWorker{
		repo:           repo,
		jobs:           make(chan MaterializeJob, 64),
		chunkSize:      defaultChunkSize,
		enqueueTimeout: defaultEnqueueTimeout,
	}
}

func (w *MaterializeWorker) Start(ctx context.Context) {
	go func() {
		log.Info().Msg("materialize worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Info().Msg("materialize worker shutting down")
				return
			}
		}
	}()
}

// Enqueue hands a job to the worker, waiting up to the enqueue timeout
// when the buffer is full. It reports whether the job was accepted; a
// drop is logged at error level since the period then stays
// unmaterialized until the next recalculation.
func (w *MaterializeWorker) Enqueue(job MaterializeJob) bool {
	select {
	case w.jobs <- job:
		return true
	default:
	}

	timer := time.NewTimer(w.enqueueTimeout)
	defer timer.Stop()

	select {
	case w.jobs <- job:
		return true
	case <-timer.C:
		log.Error().Str("user_id", job.UserID).Msg("materialize queue full, job dropped")
		return false
	}
}

func (w *MaterializeWorker) processJob(ctx context.Context, job MaterializeJob) {
	err := w.Materialize(ctx, job)
	if err == nil {
		return
	}

	job.attempts++
	if job.attempts >= maxJobAttempts {
		log.Error().Err(err).Str("user_id", job.UserID).Msg("materialization failed, giving up")
		return
	}

	// Re-enqueue from the failing chunk; Materialize reports how far it
	// got via the wrapped cursor.
	if cursor, ok := err.(*materializeError); ok {
		job.Start = cursor.resumeFrom
	}
	log.Warn().Err(err).Str("user_id", job.UserID).Int("attempt", job.attempts).Msg("materialization interrupted, re-enqueueing")
	w.Enqueue(job)
}

type materializeError struct {
	resumeFrom time.Time
	cause      error
}

func (e *materializeError) Error() string {
	return fmt.Sprintf("materialization stopped at %s: %v", e.resumeFrom.Format(domain.DateLayout), e.cause)
}

func (e *materializeError) Unwrap() error { return e.cause }

// Materialize upserts one calendar entry per day in [Start, End],
// chunked. Re-running over the same or a superset range is idempotent:
// only the debt-period flag is touched, completion flags recorded
// earlier are preserved by the repository contract.
func (w *MaterializeWorker) Materialize(ctx context.Context, job MaterializeJob) error {
	start := dayOf(job.Start)
	end := dayOf(job.End)
	if end.Before(start) {
		return nil
	}

	chunk := make([]string, 0, w.chunkSize)
	chunkStart := start

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if len(chunk) == 0 {
			chunkStart = day
		}
		chunk = append(chunk, day.Format(domain.DateLayout))

		if len(chunk) == w.chunkSize {
			if err := w.writeChunk(ctx, job.UserID, chunk); err != nil {
				return &materializeError{resumeFrom: chunkStart, cause: err}
			}
			chunk = chunk[:0]
		}
	}

	if len(chunk) > 0 {
		if err := w.writeChunk(ctx, job.UserID, chunk); err != nil {
			return &materializeError{resumeFrom: chunkStart, cause: err}
		}
	}

	return nil
}

func (w *MaterializeWorker) writeChunk(ctx context.Context, userID string, dates []string) error {
	var err error
	for attempt := 1; attempt <= maxJobAttempts; attempt++ {
		err = w.repo.MarkDebtDays(ctx, userID, dates)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return err
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
