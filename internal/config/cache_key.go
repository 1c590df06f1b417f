package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SeedLockKey returns the key guarding against concurrent seed runs
func (r *CacheKeyStruct) SeedLockKey() string {
	return "seed:lock"
}

// SeedRunKey returns the cache key holding a seed run record
func (r *CacheKeyStruct) SeedRunKey(runID string) string {
	return fmt.Sprintf("seed:run:%s", runID)
}

// SeedLastRunKey returns the cache key pointing at the most recent run id
func (r *CacheKeyStruct) SeedLastRunKey() string {
	return "seed:last_run"
}

// SeedTemplateOutcomeKey returns the cache key for a template's latest outcome
func (r *CacheKeyStruct) SeedTemplateOutcomeKey(templateID string) string {
	return fmt.Sprintf("seed:template:%s:last_outcome", templateID)
}

// SeedProgressChannel returns the Redis PubSub channel name for a run's progress
func (r *CacheKeyStruct) SeedProgressChannel(runID string) string {
	return fmt.Sprintf("seed:run:%s:progress", runID)
}

// RevokedTokenKey returns the key marking a service token id as revoked
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

var CacheKey = NewCacheKeyStruct()
