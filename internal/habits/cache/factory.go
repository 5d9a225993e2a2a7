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
	"fmt"
	"time"
)

// Options holds the knobs the factory needs for each backend.
type Options struct {
	// RedisAddr selects the Redis instance for the "redis" backend.
	RedisAddr string
	// JanitorInterval controls the sweep cadence of the "memory" backend.
	JanitorInterval time.Duration
}

// Build constructs a Cache from a string selector:
//   - "", "memory": in-process backend with a background janitor
//   - "redis":      shared backend at Options.RedisAddr (ping-checked)
//
// The returned stop function releases backend resources (janitor goroutine);
// call it at shutdown.
func Build(backend string, opts Options) (Cache, func(), error) {
	switch backend {
	case "", "memory":
		m := NewMemory(opts.JanitorInterval)
		return m, m.Stop, nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, nil, fmt.Errorf("redis backend requires an address")
		}
		r := NewRedis(opts.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("redis not reachable at %s: %w", opts.RedisAddr, err)
		}
		return r, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend: %s", backend)
	}
}
