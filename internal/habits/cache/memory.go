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
	"sync"
	"sync/atomic"
	"time"
)

// entry is one cached value with its absolute expiry, stored as UnixNano so
// readers never need a lock to check freshness.
type entry struct {
	value     []byte
	expiresAt int64
}

// Memory is the in-process Cache backend: a sync.Map of entries with lazy
// expiry on read and a background janitor that sweeps expired keys so the map
// does not grow without bound under churning key sets.
type Memory struct {
	entries sync.Map

	janitorInterval time.Duration
	stopChan        chan struct{}
	wg              sync.WaitGroup
	stopped         uint32
}

// NewMemory creates a memory cache and starts its janitor. janitorInterval
// controls how often expired entries are swept; 0 uses a 1 minute default.
// Call Stop at shutdown.
func NewMemory(janitorInterval time.Duration) *Memory {
	if janitorInterval <= 0 {
		janitorInterval = time.Minute
	}
	m := &Memory{
		janitorInterval: janitorInterval,
		stopChan:        make(chan struct{}),
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.janitorLoop()
	}()
	return m
}

// Get returns the value for key if present and unexpired. An expired entry is
// removed on sight so readers, not just the janitor, reclaim memory.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	e := v.(*entry)
	if time.Now().UnixNano() >= atomic.LoadInt64(&e.expiresAt) {
		m.entries.Delete(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value under key with the given TTL, replacing any prior entry.
// A non-positive TTL stores nothing; a zero-lifetime entry is a delete.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		m.entries.Delete(key)
		return nil
	}
	m.entries.Store(key, &entry{
		value:     value,
		expiresAt: time.Now().Add(ttl).UnixNano(),
	})
	return nil
}

// Delete removes key. Removing an absent key is a no-op.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

// Len reports the number of live (unexpired) entries. Used by tests and the
// keys-tracked gauge; it walks the map, so keep it off hot paths.
func (m *Memory) Len() int {
	now := time.Now().UnixNano()
	n := 0
	m.entries.Range(func(_, v interface{}) bool {
		if now < atomic.LoadInt64(&v.(*entry).expiresAt) {
			n++
		}
		return true
	})
	return n
}

// Stop halts the janitor. Safe to call multiple times.
func (m *Memory) Stop() {
	if !atomic.CompareAndSwapUint32(&m.stopped, 0, 1) {
		return
	}
	close(m.stopChan)
	m.wg.Wait()
}

// janitorLoop periodically removes expired entries.
func (m *Memory) janitorLoop() {
	ticker := time.NewTicker(m.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopChan:
			return
		}
	}
}

// sweep deletes every entry whose expiry has passed. Entries written during
// the sweep may be visited or skipped; either is fine, the next cycle gets
// them.
func (m *Memory) sweep() {
	now := time.Now().UnixNano()
	m.entries.Range(func(k, v interface{}) bool {
		if now >= atomic.LoadInt64(&v.(*entry).expiresAt) {
			m.entries.Delete(k)
		}
		return true
	})
}
