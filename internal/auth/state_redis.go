// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/slmaher/ExpenseReport/internal/platform/constants"
	"github.com/slmaher/ExpenseReport/internal/platform/sec"
)

// RedisStateRepository implements StateRepository using Redis.
//
// State nonces are the ONLY thing this service keeps in Redis. They are
// single-use by contract: Consume removes the nonce atomically with the
// lookup so a replayed callback always fails.
type RedisStateRepository struct {
	client *redis.Client
}

// NewStateRepository creates a new Redis-backed StateRepository.
func NewStateRepository(client *redis.Client) *RedisStateRepository {
	return &RedisStateRepository{client: client}
}

/*
Save stores a freshly issued state nonce with the standard OAuth TTL.

Parameters:
  - context: context.Context
  - state: string

Returns:
  - error: Storage failures
*/
func (repository *RedisStateRepository) Save(context context.Context, state string) error {

	// Use constants for key prefix
	key := fmt.Sprintf("%s%s", constants.RedisPrefixOAuthState, state)

	// Set the nonce with TTL; the value is irrelevant, only presence matters
	if err := repository.client.Set(context, key, "1", constants.OAuthStateTTL).Err(); err != nil {
		return fmt.Errorf("redis_oauth_state_save_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Consume validates and deletes a state nonce in a single round trip.

Description: Returns sec.ErrInvalidToken if the nonce is absent, expired, or
already consumed.

Parameters:
  - context: context.Context
  - state: string

Returns:
  - error: sec.ErrInvalidToken or connectivity errors
*/
func (repository *RedisStateRepository) Consume(context context.Context, state string) error {

	// Use constants for key prefix
	key := fmt.Sprintf("%s%s", constants.RedisPrefixOAuthState, state)

	// GETDEL makes lookup and invalidation one atomic operation
	_, err := repository.client.GetDel(context, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sec.ErrInvalidToken
		}
		return fmt.Errorf("redis_oauth_state_consume_failed: %w", err)
	}

	// Return nil on success
	return nil
}
