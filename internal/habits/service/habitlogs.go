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

	"habitd/internal/habits/model"
	"habitd/internal/habits/storage"
	"habitd/internal/habits/telemetry"
	"habitd/internal/habits/workflow"

	"github.com/google/uuid"
)

// DefaultPageSize is the habit-log page size when the caller passes none.
const DefaultPageSize = 20

// HabitLogs is the uncached habit-log service. Log creation goes exclusively
// through the transactional workflow; the direct paths only read, patch the
// logged flag, or delete.
type HabitLogs struct {
	st       *storage.Storage
	habits   *storage.HabitRepository
	logs     *storage.HabitLogRepository
	logHabit *workflow.LogHabit
	pageSize int
}

// NewHabitLogs wires the plain habit-log service. pageSize <= 0 selects
// DefaultPageSize.
func NewHabitLogs(st *storage.Storage, habits *storage.HabitRepository, logs *storage.HabitLogRepository, logHabit *workflow.LogHabit, pageSize int) *HabitLogs {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &HabitLogs{st: st, habits: habits, logs: logs, logHabit: logHabit, pageSize: pageSize}
}

// PageSize reports the configured page size; the cached decorator embeds it
// in page keys so a size change cannot serve pages sliced differently.
func (s *HabitLogs) PageSize() int { return s.pageSize }

// Log records a habit log through the transactional workflow and returns the
// updated habit plus the created log(s). Errors carry the apperr kinds
// documented on workflow.LogHabit.Execute.
func (s *HabitLogs) Log(ctx context.Context, post model.PostHabitLog, userID uuid.UUID) (workflow.Logged, error) {
	res, err := s.logHabit.Execute(ctx, post, userID)
	if err != nil || !res.Success {
		telemetry.RecordRollback()
		return workflow.Logged{}, err
	}
	telemetry.RecordCommit(len(res.Data.Backfilled))
	return res.Data, nil
}

// Get returns one log, or (nil, nil) when absent or not owned.
func (s *HabitLogs) Get(ctx context.Context, userID, logID uuid.UUID) (*model.HabitLog, error) {
	return s.logs.GetByID(ctx, s.st.DB(), userID, logID)
}

// GetMostRecent returns the habit's latest log, or (nil, nil) when the habit
// is absent, not owned, or has no logs.
func (s *HabitLogs) GetMostRecent(ctx context.Context, userID, habitID uuid.UUID) (*model.HabitLog, error) {
	h, err := s.habits.GetByID(ctx, s.st.DB(), userID, habitID)
	if err != nil || h == nil {
		return nil, err
	}
	return s.logs.MostRecent(ctx, s.st.DB(), habitID)
}

// GetPage returns one page of the habit's logs, newest first, 1-based.
func (s *HabitLogs) GetPage(ctx context.Context, userID, habitID uuid.UUID, page int) ([]model.HabitLog, error) {
	return s.logs.GetPage(ctx, s.st.DB(), userID, habitID, page, s.pageSize)
}

// Update flips a log's logged flag. Returns false when no owned log matched.
func (s *HabitLogs) Update(ctx context.Context, userID uuid.UUID, patch model.PatchHabitLog) (bool, error) {
	return s.logs.UpdateLogged(ctx, s.st.DB(), userID, patch.ID, patch.Logged)
}

// Delete removes a log. Returns false when no owned log matched.
func (s *HabitLogs) Delete(ctx context.Context, userID, logID uuid.UUID) (bool, error) {
	return s.logs.Delete(ctx, s.st.DB(), userID, logID)
}
