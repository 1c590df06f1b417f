package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/service"
)

const (
	SeedPollTimeout   = 1 * time.Second // Must be >= 1s to satisfy Redis
	SeedRequeueDelay  = 5 * time.Second
	SeedErrorCooldown = 3 * time.Second
)

// RunExecutor executes queued seed runs.
type RunExecutor interface {
	Execute(ctx context.Context, runID string) error
}

// SeedWorker consumes queued seed runs one at a time.
type SeedWorker struct {
	rdb      *redis.Client
	executor RunExecutor
	log      zerolog.Logger
}

func NewSeedWorker(rdb *redis.Client, executor RunExecutor, log zerolog.Logger) *SeedWorker {
	return &SeedWorker{
		rdb:      rdb,
		executor: executor,
		log:      log.With().Str("component", "seed_worker").Logger(),
	}
}

func (w *SeedWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SeedWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SeedWorker stopped")
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, SeedPollTimeout, config.WorkerKey.SeedRequestsQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("BLPop error, sleeping")
			sleepCtx(ctx, SeedErrorCooldown)
			continue
		}

		// result[0] is the key, result[1] the run id.
		runID := result[1]
		if w.process(ctx, runID) {
			sleepCtx(ctx, SeedRequeueDelay)
			if err := w.rdb.RPush(context.WithoutCancel(ctx), config.WorkerKey.SeedRequestsQueue, runID).Err(); err != nil {
				w.log.Error().Err(err).Str("run_id", runID).Msg("Failed to requeue run")
			}
		}
	}
}

// process executes one run and reports whether it should go back on the queue.
func (w *SeedWorker) process(ctx context.Context, runID string) (requeue bool) {
	err := w.executor.Execute(ctx, runID)
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrSeedInProgress):
		w.log.Info().Str("run_id", runID).Msg("Another run holds the seed lock, requeueing")
		return true
	case errors.Is(err, service.ErrRunNotFound):
		w.log.Warn().Str("run_id", runID).Msg("Queued run expired before it could start, dropping")
		return false
	case ctx.Err() != nil:
		w.log.Warn().Str("run_id", runID).Msg("Shutdown interrupted run, requeueing")
		return true
	default:
		w.log.Error().Err(err).Str("run_id", runID).Msg("Seed run failed")
		return false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
