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

// Package service exposes the habit and habit-log operations the controller
// layer consumes. Each service comes in two flavors with identical
// signatures: the plain service over the repositories, and a cached decorator
// in front of it. Reads report absence as (nil, nil); errors are real
// failures carrying an apperr kind.
package service

import (
	"context"
	"time"

	"habitd/internal/habits/apperr"
	"habitd/internal/habits/model"
	"habitd/internal/habits/storage"
	"habitd/internal/habits/workflow"

	"github.com/google/uuid"
)

// Habits is the uncached habit service.
type Habits struct {
	st     *storage.Storage
	habits *storage.HabitRepository
	logs   *storage.HabitLogRepository
	users  *storage.UserRepository
	now    func() time.Time
}

// NewHabits wires the plain habit service. now is injectable for streak
// staleness tests; pass nil for time.Now.
func NewHabits(st *storage.Storage, habits *storage.HabitRepository, logs *storage.HabitLogRepository, users *storage.UserRepository, now func() time.Time) *Habits {
	if now == nil {
		now = time.Now
	}
	return &Habits{st: st, habits: habits, logs: logs, users: users, now: now}
}

// Get returns the habit, or (nil, nil) when absent or not owned. A positive
// stored streak whose latest log is older than one period is reported as 0 —
// broken, not trusted; the stored row is corrected by the next workflow run.
func (s *Habits) Get(ctx context.Context, userID, habitID uuid.UUID) (*model.Habit, error) {
	h, err := s.habits.GetByID(ctx, s.st.DB(), userID, habitID)
	if err != nil || h == nil {
		return nil, err
	}
	if h.StreakCount > 0 {
		last, err := s.logs.MostRecent(ctx, s.st.DB(), habitID)
		if err != nil {
			return nil, err
		}
		if workflow.StreakStale(h.StreakCount, last, s.now()) {
			h.StreakCount = 0
		}
	}
	return h, nil
}

// GetAll returns the user's habits with stored streaks. Staleness is judged
// on single-entity reads, where the latest log is fetched anyway; the list
// view shows the stored counters.
func (s *Habits) GetAll(ctx context.Context, userID uuid.UUID) ([]model.Habit, error) {
	return s.habits.GetAllByUser(ctx, s.st.DB(), userID)
}

// Add creates a habit for userID with a zero streak. An unknown user is
// NotFound; a blank name is BadRequest.
func (s *Habits) Add(ctx context.Context, userID uuid.UUID, post model.PostHabit) (*model.Habit, error) {
	if post.Name == "" {
		return nil, apperr.Wrap(apperr.ErrBadRequest, "habit name is required")
	}
	exists, err := s.users.Exists(ctx, s.st.DB(), userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.Wrap(apperr.ErrNotFound, "user %s", userID)
	}
	return s.habits.Insert(ctx, s.st.DB(), model.Habit{
		ID:     uuid.New(),
		UserID: userID,
		Name:   post.Name,
	})
}

// Update renames a habit. Returns false when no owned habit matched. The
// streak counter is out of reach here; only the workflow moves it.
func (s *Habits) Update(ctx context.Context, userID uuid.UUID, patch model.PatchHabit) (bool, error) {
	if patch.Name == "" {
		return false, apperr.Wrap(apperr.ErrBadRequest, "habit name is required")
	}
	return s.habits.UpdateName(ctx, s.st.DB(), userID, patch.ID, patch.Name)
}

// Delete removes a habit and its logs. Returns false when no owned habit
// matched.
func (s *Habits) Delete(ctx context.Context, userID, habitID uuid.UUID) (bool, error) {
	return s.habits.Delete(ctx, s.st.DB(), userID, habitID)
}
