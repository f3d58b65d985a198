// Package jobs defines background tasks and the Asynq worker wrapper.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/hoaxify/hoaxify-api/internal/images"
	"github.com/hoaxify/hoaxify-api/internal/users"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskImagesSweep is the task type for the stored-image sweep.
	TaskImagesSweep = "images:sweep"
)

// NewImagesSweepTask constructs an Asynq task. The sweep carries no payload.
func NewImagesSweepTask() *asynq.Task {
	return asynq.NewTask(TaskImagesSweep, nil)
}

// DefaultSweepMinAge matches the sweep schedule, so a file written by a
// request that has not committed yet is never younger than two sweeps when
// it first becomes eligible.
const DefaultSweepMinAge = time.Hour

// Sweeper removes stored image files no longer referenced by any user row.
// The request path performs its own commit-then-discard sequence; the sweep
// only collects files left behind by crashes between those two steps.
type Sweeper struct {
	Logger *slog.Logger
	Repo   users.Repository
	Store  images.Store
	// MinAge keeps files written by in-flight requests out of reach: a file
	// newer than this may still be awaiting its row commit, so an unreferenced
	// one is only an orphan once it is older. Zero means DefaultSweepMinAge.
	MinAge time.Duration
}

// HandleImagesSweep processes TaskImagesSweep tasks.
func (s *Sweeper) HandleImagesSweep(ctx context.Context, t *asynq.Task) error {
	minAge := s.MinAge
	if minAge <= 0 {
		minAge = DefaultSweepMinAge
	}
	cutoff := time.Now().Add(-minAge)

	refs, err := s.Repo.ListImageRefs(ctx)
	if err != nil {
		return err
	}
	live := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		live[ref] = struct{}{}
	}

	stored, err := s.Store.List(ctx)
	if err != nil {
		return err
	}
	removed := 0
	for _, obj := range stored {
		if _, ok := live[obj.Ref]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.Store.Delete(ctx, obj.Ref); err != nil {
			s.Logger.Warn("sweep delete", slog.String("ref", obj.Ref), slog.Any("error", err))
			continue
		}
		removed++
	}
	if removed > 0 {
		s.Logger.Info("image sweep complete", slog.Int("removed", removed))
	}
	return nil
}
