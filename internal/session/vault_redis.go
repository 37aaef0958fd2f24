// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/constants"
)

// RedisVault persists the bearer credential in Redis, keyed by device
// installation. The TTL tracks the token's own expiry so a lapsed credential
// ages out of storage on its own.
type RedisVault struct {
	client         *redis.Client
	installationID string
}

// NewRedisVault constructs a [RedisVault] bound to one installation.
func NewRedisVault(client *redis.Client, installationID string) *RedisVault {
	return &RedisVault{client: client, installationID: installationID}
}

// Save implements [TokenVault]. A non-positive TTL means the token is already
// inside its expiry margin; it is not worth persisting.
func (vault *RedisVault) Save(ctx context.Context, rawToken string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := vault.client.Set(ctx, vault.key(), rawToken, ttl).Err(); err != nil {
		return fmt.Errorf("session: failed to persist token: %w", err)
	}
	return nil
}

// Load implements [TokenVault].
func (vault *RedisVault) Load(ctx context.Context) (string, error) {
	rawToken, err := vault.client.Get(ctx, vault.key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("session: failed to load token: %w", err)
	}
	return rawToken, nil
}

// Clear implements [TokenVault]. Clearing an absent key is not an error.
func (vault *RedisVault) Clear(ctx context.Context) error {
	if err := vault.client.Del(ctx, vault.key()).Err(); err != nil {
		return fmt.Errorf("session: failed to clear token: %w", err)
	}
	return nil
}

func (vault *RedisVault) key() string {
	return constants.RedisPrefixSessionToken + vault.installationID
}
