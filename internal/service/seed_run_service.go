package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/monitoring"
)

var (
	ErrSeedInProgress = errors.New("another seed run is in progress")
	ErrRunNotFound    = errors.New("seed run not found")
)

// SeedRunService tracks batch materializations as runs and makes sure only
// one run touches the catalog at a time.
type SeedRunService struct {
	store        RunStore
	orchestrator *BatchOrchestrator
	log          zerolog.Logger
}

// NewSeedRunService creates a new SeedRunService.
func NewSeedRunService(store RunStore, orchestrator *BatchOrchestrator, log zerolog.Logger) *SeedRunService {
	return &SeedRunService{
		store:        store,
		orchestrator: orchestrator,
		log:          log.With().Str("component", "seed_run_service").Logger(),
	}
}

// RunTemplate materializes one template synchronously under the seed lock.
func (s *SeedRunService) RunTemplate(ctx context.Context, templateID string) (model.SurveyOutcome, error) {
	owner := uuid.NewString()
	if err := s.acquire(ctx, owner); err != nil {
		return model.SurveyOutcome{}, err
	}
	defer s.release(owner)

	out, err := s.orchestrator.MaterializeTemplate(WithRunID(ctx, owner), templateID)
	if err != nil {
		return out, err
	}
	s.storeTemplateOutcome(ctx, out)
	return out, nil
}

// Run materializes templates synchronously and records the run. A pre-flight
// fault is returned alongside the failed run.
func (s *SeedRunService) Run(ctx context.Context, templateIDs []string, requestedBy string) (*model.SeedRun, error) {
	if _, err := s.orchestrator.Templates().Lookup(templateIDs); err != nil {
		return nil, err
	}

	run := newRun(templateIDs, requestedBy)
	if err := s.acquire(ctx, run.ID); err != nil {
		return nil, err
	}
	defer s.release(run.ID)

	return run, s.execute(ctx, run)
}

// Enqueue records a queued run and hands it to the seed worker.
func (s *SeedRunService) Enqueue(ctx context.Context, templateIDs []string, requestedBy string) (*model.SeedRun, error) {
	if _, err := s.orchestrator.Templates().Lookup(templateIDs); err != nil {
		return nil, err
	}

	run := newRun(templateIDs, requestedBy)
	if err := s.store.SaveRun(ctx, run); err != nil {
		return nil, err
	}
	if err := s.store.EnqueueRun(ctx, run.ID); err != nil {
		return nil, fmt.Errorf("enqueue seed run: %w", err)
	}

	s.log.Info().Str("run_id", run.ID).Strs("template_ids", templateIDs).Msg("Seed run queued")
	return run, nil
}

// Execute runs a previously queued run. It returns ErrSeedInProgress, leaving
// the run queued, when another run holds the lock.
func (s *SeedRunService) Execute(ctx context.Context, runID string) error {
	run, err := s.Get(ctx, runID)
	if err != nil {
		return err
	}
	if run.Status != model.SeedRunQueued {
		s.log.Warn().Str("run_id", runID).Str("status", string(run.Status)).Msg("Skipping run that is not queued")
		return nil
	}

	if err := s.acquire(ctx, run.ID); err != nil {
		return err
	}
	defer s.release(run.ID)

	if err := s.execute(ctx, run); err != nil {
		s.log.Warn().Err(err).Str("run_id", run.ID).Msg("Queued run failed pre-flight")
	}
	return nil
}

// Get loads a run by id.
func (s *SeedRunService) Get(ctx context.Context, runID string) (*model.SeedRun, error) {
	return s.store.LoadRun(ctx, runID)
}

// Last loads the most recently started run.
func (s *SeedRunService) Last(ctx context.Context) (*model.SeedRun, error) {
	runID, err := s.store.LastRunID(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, runID)
}

// execute materializes the run and persists its result. The returned error
// is the pre-flight fault, if any; it is also recorded on the run.
func (s *SeedRunService) execute(ctx context.Context, run *model.SeedRun) error {
	started := time.Now().UTC()
	run.Status = model.SeedRunRunning
	run.StartedAt = &started
	if err := s.store.SaveRun(ctx, run); err != nil {
		s.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to persist running state")
	}
	if err := s.store.SetLastRun(ctx, run.ID); err != nil {
		s.log.Error().Err(err).Msg("Failed to update last run pointer")
	}

	runLog := s.log.With().Str("run_id", run.ID).Logger()
	runLog.Info().Strs("template_ids", run.TemplateIDs).Msg("Seed run started")

	batch, err := s.orchestrator.MaterializeIDs(WithRunID(ctx, run.ID), run.TemplateIDs)

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	if err != nil {
		run.Status = model.SeedRunFailed
		run.Error = err.Error()
		runLog.Error().Err(err).Msg("Seed run aborted")
	} else {
		run.Status = model.SeedRunCompleted
		run.Outcome = &batch
		for _, out := range batch.PerTemplate {
			s.storeTemplateOutcome(ctx, out)
		}
		runLog.Info().
			Int("success", batch.SuccessCount).
			Int("total", batch.TotalCount).
			Dur("took", finished.Sub(started)).
			Msg("Seed run finished")
	}

	monitoring.SeedRuns.WithLabelValues(string(run.Status)).Inc()

	// The caller may have gone away; the record still has to land.
	saveCtx := context.WithoutCancel(ctx)
	if err := s.store.SaveRun(saveCtx, run); err != nil {
		runLog.Error().Err(err).Msg("Failed to persist run result")
	}
	if err := s.store.Publish(saveCtx, model.ProgressEvent{
		RunID:   run.ID,
		Kind:    model.ProgressRunFinished,
		Message: string(run.Status),
		At:      finished,
	}); err != nil {
		runLog.Debug().Err(err).Msg("Failed to publish run result")
	}
	return err
}

func (s *SeedRunService) acquire(ctx context.Context, owner string) error {
	ok, err := s.store.AcquireLock(ctx, owner)
	if err != nil {
		return fmt.Errorf("acquire seed lock: %w", err)
	}
	if !ok {
		return ErrSeedInProgress
	}
	return nil
}

func (s *SeedRunService) release(owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.ReleaseLock(ctx, owner); err != nil {
		s.log.Error().Err(err).Msg("Failed to release seed lock")
	}
}

func (s *SeedRunService) storeTemplateOutcome(ctx context.Context, out model.SurveyOutcome) {
	if err := s.store.SaveTemplateOutcome(ctx, out); err != nil {
		s.log.Warn().Err(err).Str("template_id", out.TemplateID).Msg("Failed to cache template outcome")
	}
}

func newRun(templateIDs []string, requestedBy string) *model.SeedRun {
	if templateIDs == nil {
		templateIDs = []string{}
	}
	return &model.SeedRun{
		ID:          uuid.NewString(),
		Status:      model.SeedRunQueued,
		TemplateIDs: templateIDs,
		RequestedBy: requestedBy,
		QueuedAt:    time.Now().UTC(),
	}
}

// RedisProgress publishes progress events on the run's Redis channel.
// Events without a run id are dropped.
type RedisProgress struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisProgress creates a new RedisProgress.
func NewRedisProgress(rdb *redis.Client, log zerolog.Logger) *RedisProgress {
	return &RedisProgress{rdb: rdb, log: log.With().Str("component", "redis_progress").Logger()}
}

func (p *RedisProgress) Report(ctx context.Context, e model.ProgressEvent) {
	if e.RunID == "" {
		return
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := p.rdb.Publish(ctx, config.CacheKey.SeedProgressChannel(e.RunID), raw).Err(); err != nil {
		p.log.Debug().Err(err).Str("run_id", e.RunID).Msg("Failed to publish progress")
	}
}
