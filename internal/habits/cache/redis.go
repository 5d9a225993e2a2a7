// Copyright 2026 Esteban Alvarez. All Rights Reserved.
//
// Created: August 2026
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis is the shared-state Cache backend, for deployments where several
// API instances must agree on cached pages, version tokens and rate-limit
// windows. It uses github.com/redis/go-redis/v9 under the hood.
type Redis struct {
	c *redis.Client
}

// NewRedis constructs a Redis cache for an address like "127.0.0.1:6379".
func NewRedis(addr string) *Redis {
	return &Redis{c: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewRedisWithClient wraps an existing client; used by tests and by callers
// that need custom client options (TLS, pooling).
func NewRedisWithClient(c *redis.Client) *Redis {
	return &Redis{c: c}
}

// Get returns the value at key. A redis.Nil reply is a miss, not an error.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

// Set stores value with TTL via SET EX. A non-positive TTL deletes the key,
// mirroring the memory backend.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return r.Delete(ctx, key)
	}
	if err := r.c.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. DEL on an absent key is already a no-op in Redis.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.c.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping verifies connectivity; the factory calls it so a misconfigured
// address fails at startup rather than on the first cached read.
func (r *Redis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}
