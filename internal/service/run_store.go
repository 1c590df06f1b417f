package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/model"
)

// RunStore holds the seed lock, run records and the run queue.
// LoadRun and LastRunID return ErrRunNotFound for unknown or expired runs.
type RunStore interface {
	AcquireLock(ctx context.Context, owner string) (bool, error)
	ReleaseLock(ctx context.Context, owner string) error
	SaveRun(ctx context.Context, run *model.SeedRun) error
	LoadRun(ctx context.Context, runID string) (*model.SeedRun, error)
	SetLastRun(ctx context.Context, runID string) error
	LastRunID(ctx context.Context) (string, error)
	EnqueueRun(ctx context.Context, runID string) error
	SaveTemplateOutcome(ctx context.Context, out model.SurveyOutcome) error
	Publish(ctx context.Context, e model.ProgressEvent) error
}

// releaseLockScript deletes the lock only while it still belongs to the caller.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunStore keeps runs in Redis. The lock expires after lockTTL so a
// crashed process cannot block seeding forever; records expire after runTTL.
type RedisRunStore struct {
	rdb     *redis.Client
	lockTTL time.Duration
	runTTL  time.Duration
}

var _ RunStore = (*RedisRunStore)(nil)

// NewRedisRunStore creates a new RedisRunStore.
func NewRedisRunStore(rdb *redis.Client, cfg *config.Config) *RedisRunStore {
	return &RedisRunStore{rdb: rdb, lockTTL: cfg.SeedLockTTL, runTTL: cfg.SeedRunTTL}
}

func (s *RedisRunStore) AcquireLock(ctx context.Context, owner string) (bool, error) {
	return s.rdb.SetNX(ctx, config.CacheKey.SeedLockKey(), owner, s.lockTTL).Result()
}

func (s *RedisRunStore) ReleaseLock(ctx context.Context, owner string) error {
	return releaseLockScript.Run(ctx, s.rdb, []string{config.CacheKey.SeedLockKey()}, owner).Err()
}

func (s *RedisRunStore) SaveRun(ctx context.Context, run *model.SeedRun) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, config.CacheKey.SeedRunKey(run.ID), raw, s.runTTL).Err()
}

func (s *RedisRunStore) LoadRun(ctx context.Context, runID string) (*model.SeedRun, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.SeedRunKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load seed run: %w", err)
	}

	var run model.SeedRun
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("decode seed run: %w", err)
	}
	return &run, nil
}

func (s *RedisRunStore) SetLastRun(ctx context.Context, runID string) error {
	return s.rdb.Set(ctx, config.CacheKey.SeedLastRunKey(), runID, s.runTTL).Err()
}

func (s *RedisRunStore) LastRunID(ctx context.Context) (string, error) {
	runID, err := s.rdb.Get(ctx, config.CacheKey.SeedLastRunKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrRunNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load last run id: %w", err)
	}
	return runID, nil
}

func (s *RedisRunStore) EnqueueRun(ctx context.Context, runID string) error {
	return s.rdb.RPush(ctx, config.WorkerKey.SeedRequestsQueue, runID).Err()
}

func (s *RedisRunStore) SaveTemplateOutcome(ctx context.Context, out model.SurveyOutcome) error {
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, config.CacheKey.SeedTemplateOutcomeKey(out.TemplateID), raw, s.runTTL).Err()
}

func (s *RedisRunStore) Publish(ctx context.Context, e model.ProgressEvent) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, config.CacheKey.SeedProgressChannel(e.RunID), raw).Err()
}
