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

// Package workflow implements the habit-logging engine: the pure streak and
// backfill calculators and the transactional unit of work that applies them.
package workflow

import (
	"time"

	"habitd/internal/habits/apperr"
	"habitd/internal/habits/model"
)

// NextStreak computes the streak counter after a new log dated newDate.
// mostRecent is the start date of the previous real log, nil when the habit
// has never been logged. Backfilled gap entries must not be passed here; the
// streak is judged against the last real log only.
//
// Rules:
//   - first log ever (streak 0, no prior date) starts a streak of 1
//   - a nonzero streak with no prior log is inconsistent state
//   - a gap of exactly one day extends the streak
//   - any other gap, including zero and negative, resets to 1 — even when
//     backfill just covered the gap, because those entries are unlogged
func NextStreak(currentStreak uint32, mostRecent *time.Time, newDate time.Time) (uint32, error) {
	if mostRecent == nil {
		if currentStreak == 0 {
			return 1, nil
		}
		return 0, apperr.Wrap(apperr.ErrNotFound,
			"habit has streak %d but no prior log", currentStreak)
	}
	if model.DaysBetween(*mostRecent, newDate) == 1 {
		return currentStreak + 1, nil
	}
	return 1, nil
}

// StreakStale reports whether a habit's streak can no longer be trusted: a
// positive streak whose last log started more than one period before now.
// Readers report such a streak as broken (zero) rather than serving the
// stored counter; the stored row is corrected on the next write.
func StreakStale(streak uint32, lastLog *model.HabitLog, now time.Time) bool {
	if streak == 0 {
		return false
	}
	if lastLog == nil {
		return true
	}
	return model.DaysBetween(lastLog.StartDate, now) > lastLog.LengthDays
}
