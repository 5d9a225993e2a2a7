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
	"habitd/internal/habits/workflow"

	"github.com/google/uuid"
)

// HabitLogService is the habit-log surface both flavors implement.
type HabitLogService interface {
	Log(ctx context.Context, post model.PostHabitLog, userID uuid.UUID) (workflow.Logged, error)
	Get(ctx context.Context, userID, logID uuid.UUID) (*model.HabitLog, error)
	GetMostRecent(ctx context.Context, userID, habitID uuid.UUID) (*model.HabitLog, error)
	GetPage(ctx context.Context, userID, habitID uuid.UUID, page int) ([]model.HabitLog, error)
	Update(ctx context.Context, userID uuid.UUID, patch model.PatchHabitLog) (bool, error)
	Delete(ctx context.Context, userID, logID uuid.UUID) (bool, error)
	PageSize() int
}

// CachedHabitLogs fronts a HabitLogService with the TTL cache.
//
// Single-entity reads (log by id, most recent log by habit) use deterministic
// keys. Paginated reads go through the version-token indirection: the page
// key embeds an opaque token stored under the habit's version key, so every
// successful mutation orphans all cached pages with one token write instead
// of enumerating page keys.
//
// As with CachedHabits, mutations touch the cache and the event sink only
// after the inner call reports success.
type CachedHabitLogs struct {
	inner HabitLogService
	box   cacheBox
	sink  events.Sink
}

// NewCachedHabitLogs builds the decorator. ttl <= 0 selects DefaultCacheTTL.
func NewCachedHabitLogs(inner HabitLogService, c cache.Cache, ttl time.Duration, sink events.Sink) *CachedHabitLogs {
	return &CachedHabitLogs{inner: inner, box: newCacheBox(c, ttl), sink: sink}
}

// PageSize forwards the inner page size.
func (s *CachedHabitLogs) PageSize() int { return s.inner.PageSize() }

// Log runs the transactional workflow. On commit: the created log primes its
// single-entity entry, the habit entry is refreshed with the new streak, the
// collection and most-recent entries are invalidated, the page family is
// orphaned, and the result is announced to the event sink.
func (s *CachedHabitLogs) Log(ctx context.Context, post model.PostHabitLog, userID uuid.UUID) (workflow.Logged, error) {
	out, err := s.inner.Log(ctx, post, userID)
	if err != nil {
		return out, err
	}
	s.box.setJSON(ctx, habitLogKey(userID, out.Log.ID), out.Log)
	s.box.setJSON(ctx, habitKey(userID, out.Habit.ID), out.Habit)
	s.box.drop(ctx,
		habitsKey(userID),
		recentLogKey(userID, out.Habit.ID),
	)
	s.box.setString(ctx, logsVersionKey(userID, out.Habit.ID), newVersionToken())
	s.sink.Publish(userID, events.TypeHabitLogged, out)
	return out, nil
}

func (s *CachedHabitLogs) Get(ctx context.Context, userID, logID uuid.UUID) (*model.HabitLog, error) {
	key := habitLogKey(userID, logID)
	var cached model.HabitLog
	if s.box.getJSON(ctx, key, &cached) {
		telemetry.RecordCacheHit("habit_log")
		return &cached, nil
	}
	telemetry.RecordCacheMiss("habit_log")

	l, err := s.inner.Get(ctx, userID, logID)
	if err != nil || l == nil {
		return l, err
	}
	s.box.setJSON(ctx, key, l)
	return l, nil
}

func (s *CachedHabitLogs) GetMostRecent(ctx context.Context, userID, habitID uuid.UUID) (*model.HabitLog, error) {
	key := recentLogKey(userID, habitID)
	var cached model.HabitLog
	if s.box.getJSON(ctx, key, &cached) {
		telemetry.RecordCacheHit("most_recent_log")
		return &cached, nil
	}
	telemetry.RecordCacheMiss("most_recent_log")

	l, err := s.inner.GetMostRecent(ctx, userID, habitID)
	if err != nil || l == nil {
		return l, err
	}
	s.box.setJSON(ctx, key, l)
	return l, nil
}

// GetPage is the explicit two-level lookup. First resolve the habit's
// current version token (a miss there creates nothing yet), then the page
// under that token. A miss at either level is a full miss: the inner service
// answers, a fresh token is written — always, even when the old token
// resolved — and the page is cached under the fresh token. Non-empty pages
// only; an empty page is returned but never cached.
func (s *CachedHabitLogs) GetPage(ctx context.Context, userID, habitID uuid.UUID, page int) ([]model.HabitLog, error) {
	versionKey := logsVersionKey(userID, habitID)
	if token, ok := s.box.getString(ctx, versionKey); ok {
		var cached []model.HabitLog
		if s.box.getJSON(ctx, logsPageKey(token, s.PageSize(), page), &cached) {
			telemetry.RecordCacheHit("logs_page")
			return cached, nil
		}
	}
	telemetry.RecordCacheMiss("logs_page")

	logs, err := s.inner.GetPage(ctx, userID, habitID, page)
	if err != nil {
		return nil, err
	}
	token := newVersionToken()
	s.box.setString(ctx, versionKey, token)
	if len(logs) > 0 {
		s.box.setJSON(ctx, logsPageKey(token, s.PageSize(), page), logs)
	}
	return logs, nil
}

// Update patches the logged flag; on success the log's entry, the
// most-recent entry and the page family are invalidated. The habit entry is
// untouched — patching a flag never moves the streak.
func (s *CachedHabitLogs) Update(ctx context.Context, userID uuid.UUID, patch model.PatchHabitLog) (bool, error) {
	ok, err := s.inner.Update(ctx, userID, patch)
	if err != nil || !ok {
		return ok, err
	}
	s.invalidateForLog(ctx, userID, patch.ID)
	s.sink.Publish(userID, events.TypeHabitLogUpdated, patch)
	return true, nil
}

// Delete removes a log; invalidation mirrors Update.
func (s *CachedHabitLogs) Delete(ctx context.Context, userID, logID uuid.UUID) (bool, error) {
	// Resolve the owning habit before the row disappears, so the right
	// version key gets bumped.
	l, err := s.inner.Get(ctx, userID, logID)
	if err != nil {
		return false, err
	}
	ok, err := s.inner.Delete(ctx, userID, logID)
	if err != nil || !ok {
		return ok, err
	}
	s.box.drop(ctx, habitLogKey(userID, logID))
	if l != nil {
		s.box.drop(ctx, recentLogKey(userID, l.HabitID))
		s.box.setString(ctx, logsVersionKey(userID, l.HabitID), newVersionToken())
	}
	s.sink.Publish(userID, events.TypeHabitLogDeleted, logID)
	return true, nil
}

// invalidateForLog drops the entries a patched log can make stale. The owning
// habit is read through the inner service (the cached entry may itself be the
// stale one being patched).
func (s *CachedHabitLogs) invalidateForLog(ctx context.Context, userID, logID uuid.UUID) {
	s.box.drop(ctx, habitLogKey(userID, logID))
	l, err := s.inner.Get(ctx, userID, logID)
	if err != nil || l == nil {
		return
	}
	s.box.drop(ctx, recentLogKey(userID, l.HabitID))
	s.box.setString(ctx, logsVersionKey(userID, l.HabitID), newVersionToken())
}
