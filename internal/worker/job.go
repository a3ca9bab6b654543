package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nyashahama/balance-cup-backend/internal/round"
)

// Saver is the slice of *store.Store the persistence job needs.
type Saver interface {
	SaveBatch(ctx context.Context, b round.Batch) (int, error)
}

// Job writes one batch of generated questions to the question bank.
type Job struct {
	saver  Saver
	logger *slog.Logger
}

// NewJob constructs a Job with all required dependencies.
func NewJob(saver Saver, logger *slog.Logger) *Job {
	return &Job{saver: saver, logger: logger}
}

// Run saves b. Items already stored for the topic are skipped by the store,
// so a retried batch never duplicates rows.
func (j *Job) Run(ctx context.Context, b round.Batch) error {
	if len(b.Items) == 0 {
		return nil
	}
	n, err := j.saver.SaveBatch(ctx, b)
	if err != nil {
		return fmt.Errorf("job: save %d items for %q: %w", len(b.Items), b.Topic, err)
	}
	j.logger.Info("job: batch saved", "topic", b.Topic, "items", len(b.Items), "inserted", n)
	return nil
}
