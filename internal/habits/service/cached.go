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

package service

import (
	"context"
	"encoding/json"
	"time"

	"habitd/internal/habits/cache"
)

// DefaultCacheTTL is the shared lifetime of every cached entry, version
// tokens included.
const DefaultCacheTTL = 30 * time.Minute

// cacheBox wraps the Cache capability with JSON encoding and the error policy
// of the cached services: caching must never fail a request. A backend error
// on read counts as a miss; a backend error on write is dropped. The inner
// service's result is what the caller gets either way.
type cacheBox struct {
	c   cache.Cache
	ttl time.Duration
}

func newCacheBox(c cache.Cache, ttl time.Duration) cacheBox {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return cacheBox{c: c, ttl: ttl}
}

// getJSON loads key into out, reporting whether it was a usable hit.
func (b cacheBox) getJSON(ctx context.Context, key string, out interface{}) bool {
	raw, ok, err := b.c.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// setJSON stores v under key for the shared TTL. Failures are dropped.
func (b cacheBox) setJSON(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = b.c.Set(ctx, key, raw, b.ttl)
}

// getString / setString carry version tokens, which are opaque strings and
// skip the JSON detour.
func (b cacheBox) getString(ctx context.Context, key string) (string, bool) {
	raw, ok, err := b.c.Get(ctx, key)
	if err != nil || !ok || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

func (b cacheBox) setString(ctx context.Context, key, v string) {
	_ = b.c.Set(ctx, key, []byte(v), b.ttl)
}

// drop removes keys, ignoring backend failures. An entry that survives a
// failed delete is stale-but-addressed; it ages out via TTL, and the next
// successful mutation removes it again.
func (b cacheBox) drop(ctx context.Context, keys ...string) {
	for _, k := range keys {
		_ = b.c.Delete(ctx, k)
	}
}
