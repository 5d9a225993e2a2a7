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
	"time"

	"habitd/internal/habits/cache"
	"habitd/internal/habits/events"
	"habitd/internal/habits/model"
	"habitd/internal/habits/telemetry"

	"github.com/google/uuid"
)

// HabitService is the habit surface both flavors implement; the cached
// decorator wraps any implementation of it.
type HabitService interface {
	Get(ctx context.Context, userID, habitID uuid.UUID) (*model.Habit, error)
	GetAll(ctx context.Context, userID uuid.UUID) ([]model.Habit, error)
	Add(ctx context.Context, userID uuid.UUID, post model.PostHabit) (*model.Habit, error)
	Update(ctx context.Context, userID uuid.UUID, patch model.PatchHabit) (bool, error)
	Delete(ctx context.Context, userID, habitID uuid.UUID) (bool, error)
}

// CachedHabits fronts a HabitService with the TTL cache. Reads serve from
// cache when possible and populate it on a miss (non-nil results only).
// Mutations run the inner call first and touch the cache and the event sink
// only when that call reports success — a failed inner call leaves every
// cached entry exactly as it was.
type CachedHabits struct {
	inner HabitService
	box   cacheBox
	sink  events.Sink
}

// NewCachedHabits builds the decorator. ttl <= 0 selects DefaultCacheTTL.
func NewCachedHabits(inner HabitService, c cache.Cache, ttl time.Duration, sink events.Sink) *CachedHabits {
	return &CachedHabits{inner: inner, box: newCacheBox(c, ttl), sink: sink}
}

func (s *CachedHabits) Get(ctx context.Context, userID, habitID uuid.UUID) (*model.Habit, error) {
	key := habitKey(userID, habitID)
	var cached model.Habit
	if s.box.getJSON(ctx, key, &cached) {
		telemetry.RecordCacheHit("habit")
		return &cached, nil
	}
	telemetry.RecordCacheMiss("habit")

	h, err := s.inner.Get(ctx, userID, habitID)
	if err != nil || h == nil {
		return h, err
	}
	s.box.setJSON(ctx, key, h)
	return h, nil
}

func (s *CachedHabits) GetAll(ctx context.Context, userID uuid.UUID) ([]model.Habit, error) {
	key := habitsKey(userID)
	var cached []model.Habit
	if s.box.getJSON(ctx, key, &cached) {
		telemetry.RecordCacheHit("habits")
		return cached, nil
	}
	telemetry.RecordCacheMiss("habits")

	habits, err := s.inner.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(habits) > 0 {
		s.box.setJSON(ctx, key, habits)
	}
	return habits, nil
}

// Add creates the habit, primes its single-entity entry with the created
// record, invalidates the user's habit collection, and announces the habit.
func (s *CachedHabits) Add(ctx context.Context, userID uuid.UUID, post model.PostHabit) (*model.Habit, error) {
	h, err := s.inner.Add(ctx, userID, post)
	if err != nil || h == nil {
		return h, err
	}
	s.box.setJSON(ctx, habitKey(userID, h.ID), h)
	s.box.drop(ctx, habitsKey(userID))
	s.sink.Publish(userID, events.TypeHabitCreated, h)
	return h, nil
}

// Update renames the habit; on success the stale single-entity and
// collection entries are invalidated.
func (s *CachedHabits) Update(ctx context.Context, userID uuid.UUID, patch model.PatchHabit) (bool, error) {
	ok, err := s.inner.Update(ctx, userID, patch)
	if err != nil || !ok {
		return ok, err
	}
	s.box.drop(ctx, habitKey(userID, patch.ID), habitsKey(userID))
	s.sink.Publish(userID, events.TypeHabitUpdated, patch)
	return true, nil
}

// Delete removes the habit and its logs; on success every key family that
// could reference them is invalidated, and the paginated log family is
// orphaned by a token bump.
func (s *CachedHabits) Delete(ctx context.Context, userID, habitID uuid.UUID) (bool, error) {
	ok, err := s.inner.Delete(ctx, userID, habitID)
	if err != nil || !ok {
		return ok, err
	}
	s.box.drop(ctx,
		habitKey(userID, habitID),
		habitsKey(userID),
		recentLogKey(userID, habitID),
	)
	s.box.setString(ctx, logsVersionKey(userID, habitID), newVersionToken())
	s.sink.Publish(userID, events.TypeHabitDeleted, habitID)
	return true, nil
}
