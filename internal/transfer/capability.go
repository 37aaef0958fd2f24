// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/constants"
)

// capabilityTTL bounds how long a fetched capability list may be reused
// across process restarts. Within one process it lives for the session.
const capabilityTTL = 12 * time.Hour

// CapabilitySource fetches the server's list of operation types that require
// a second-factor challenge.
type CapabilitySource interface {
	ChallengeOperations(ctx context.Context) ([]string, error)
}

// CapabilityCache answers "does this operation type require a challenge?"
//
// The list is fetched from the core at most once per session (not per
// transfer) and memoized; a Redis copy keyed by installation lets a restarted
// process skip the fetch while the session is still live. Reset drops both
// layers, so the next session fetches fresh.
type CapabilityCache struct {
	source         CapabilitySource
	client         *redis.Client
	installationID string

	mu     sync.Mutex
	table  map[OperationType]bool
	loaded bool
}

// NewCapabilityCache constructs a [CapabilityCache].
func NewCapabilityCache(source CapabilitySource, client *redis.Client, installationID string) *CapabilityCache {
	return &CapabilityCache{
		source:         source,
		client:         client,
		installationID: installationID,
	}
}

/*
RequiresChallenge reports whether the operation type needs a second factor.

Description: Consults the memoized table, falling back to Redis, falling
back to one fetch from the core. In the observed catalog every money-moving
operation requires a challenge, but the table — not the rail — decides.

Returns:
  - bool: Whether the orchestrator must run for this operation type.
  - err: Fetch failures when no cached copy exists (fail closed upstream).
*/
func (cache *CapabilityCache) RequiresChallenge(ctx context.Context, operation OperationType) (bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if !cache.loaded {
		if err := cache.loadLocked(ctx); err != nil {
			return false, err
		}
	}

	return cache.table[operation], nil
}

// Reset implements the session logout fan-out: the capability list belongs
// to the authenticated session and must not leak into the next one.
func (cache *CapabilityCache) Reset() {
	cache.mu.Lock()
	cache.table = nil
	cache.loaded = false
	cache.mu.Unlock()

	// Best effort: the Redis copy ages out on TTL regardless.
	_ = cache.client.Del(context.Background(), cache.key()).Err()
}

// loadLocked populates the table. Caller holds the mutex.
func (cache *CapabilityCache) loadLocked(ctx context.Context) error {
	operations, err := cache.loadFromRedis(ctx)
	if err != nil {
		operations, err = cache.source.ChallengeOperations(ctx)
		if err != nil {
			return err
		}
		cache.storeInRedis(ctx, operations)
	}

	cache.table = make(map[OperationType]bool, len(operations))
	for _, operation := range operations {
		cache.table[OperationType(operation)] = true
	}
	cache.loaded = true
	return nil
}

func (cache *CapabilityCache) loadFromRedis(ctx context.Context) ([]string, error) {
	payload, err := cache.client.Get(ctx, cache.key()).Bytes()
	if err != nil {
		return nil, err
	}
	var operations []string
	if err := json.Unmarshal(payload, &operations); err != nil {
		return nil, err
	}
	if len(operations) == 0 {
		return nil, errors.New("transfer: empty cached capability list")
	}
	return operations, nil
}

func (cache *CapabilityCache) storeInRedis(ctx context.Context, operations []string) {
	payload, err := json.Marshal(operations)
	if err != nil {
		return
	}
	_ = cache.client.Set(ctx, cache.key(), payload, capabilityTTL).Err()
}

func (cache *CapabilityCache) key() string {
	return constants.RedisPrefixChallengeOps + cache.installationID
}
