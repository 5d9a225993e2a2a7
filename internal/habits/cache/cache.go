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

// Package cache provides the capability-abstracted TTL cache the cached
// services and the rate limiter sit on. Two backends implement the same
// interface: an in-process concurrent map with a background janitor, and a
// Redis client for deployments where several instances must share state.
//
// The cache stores opaque byte slices. Encoding/decoding of domain records
// and the version-token indirection for paginated reads belong to the callers;
// nothing in this package knows what a habit is.
package cache

import (
	"context"
	"time"
)

// Cache is the minimal get/set-with-ttl/remove capability. Implementations
// must be safe for concurrent use by many goroutines.
//
// Get returns (value, true, nil) on a hit and (nil, false, nil) on a miss or
// an expired entry; the error is reserved for backend failures (e.g. a Redis
// round trip), never for absence.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
