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

package workflow

import (
	"context"
	"time"

	"habitd/internal/habits/apperr"
	"habitd/internal/habits/model"
	"habitd/internal/habits/storage"

	"github.com/google/uuid"
)

// Result is the uniform outcome of a unit-of-work step: a success flag and
// the produced data. Failed results carry the zero value.
type Result[T any] struct {
	Success bool
	Data    T
}

func succeed[T any](data T) Result[T] { return Result[T]{Success: true, Data: data} }

func fail[T any]() Result[T] { return Result[T]{} }

// Logged is what a successful LogHabit invocation produced: the habit with
// its recomputed streak, the requested log, and any synthetic gap entries
// inserted to cover skipped periods.
type Logged struct {
	Habit      model.Habit
	Log        model.HabitLog
	Backfilled []model.HabitLog
}

// LogHabit is the transactional unit of work that records a habit log. One
// invocation owns exactly one storage transaction and finishes it with
// exactly one commit or one rollback; no partial writes are ever visible to
// another transaction. There are no retries — a failed attempt must be
// resubmitted by the caller.
//
// Two concurrent invocations for the same (habit, date) can both pass the
// duplicate pre-check before either commits; the storage layer's unique index
// stops the loser, which surfaces as the same Conflict the pre-check reports.
type LogHabit struct {
	st     *storage.Storage
	habits *storage.HabitRepository
	logs   *storage.HabitLogRepository
}

// NewLogHabit wires the workflow over its storage collaborators.
func NewLogHabit(st *storage.Storage, habits *storage.HabitRepository, logs *storage.HabitLogRepository) *LogHabit {
	return &LogHabit{st: st, habits: habits, logs: logs}
}

// Execute records post for userID. On success the returned Result carries the
// updated habit and the created log(s); on failure the transaction has been
// rolled back and the error is one of the apperr kinds:
//
//	BadRequest — invalid period length
//	Conflict   — a log already covers (habit, start date)
//	NotFound   — habit absent or owned by someone else
//	AppError   — anything else, wrapped after rollback
func (w *LogHabit) Execute(ctx context.Context, post model.PostHabitLog, userID uuid.UUID) (Result[Logged], error) {
	if !model.ValidLogLength(post.LengthDays) {
		return fail[Logged](), apperr.Wrap(apperr.ErrBadRequest,
			"log length %d days outside %d..%d", post.LengthDays, model.MinLogLengthDays, model.MaxLogLengthDays)
	}
	post.StartDate = model.DateOnly(post.StartDate)

	tx, err := w.st.BeginTx(ctx)
	if err != nil {
		return fail[Logged](), apperr.From(err)
	}

	out, err := w.execute(ctx, tx, post, userID)
	if err != nil {
		// Rollback before surfacing anything; a failed rollback cannot
		// un-fail the invocation, so its error is secondary.
		_ = tx.Rollback()
		if storage.IsUniqueViolation(err) {
			return fail[Logged](), apperr.Wrap(apperr.ErrConflict,
				"habit %s already has a log for %s", post.HabitID, post.StartDate.Format(model.DateLayout))
		}
		return fail[Logged](), apperr.From(err)
	}
	if err := tx.Commit(); err != nil {
		return fail[Logged](), apperr.From(err)
	}
	return succeed(out), nil
}

// execute runs the ordered steps inside tx. Any returned error aborts the
// whole unit; the caller rolls back.
func (w *LogHabit) execute(ctx context.Context, tx storage.Querier, post model.PostHabitLog, userID uuid.UUID) (Logged, error) {
	// 1. Duplicate pre-check: abort before mutating anything.
	exists, err := w.logs.ExistsForDate(ctx, tx, post.HabitID, post.StartDate)
	if err != nil {
		return Logged{}, err
	}
	if exists {
		return Logged{}, apperr.Wrap(apperr.ErrConflict,
			"habit %s already has a log for %s", post.HabitID, post.StartDate.Format(model.DateLayout))
	}

	// 2. Most recent prior log; absent for a first-ever log.
	previous, err := w.logs.MostRecent(ctx, tx, post.HabitID)
	if err != nil {
		return Logged{}, err
	}

	// 3. The habit itself, ownership-scoped.
	habit, err := w.habits.GetByID(ctx, tx, userID, post.HabitID)
	if err != nil {
		return Logged{}, err
	}
	if habit == nil {
		return Logged{}, apperr.Wrap(apperr.ErrNotFound, "habit %s", post.HabitID)
	}

	// 4. Synthesize one unlogged entry per fully missed period, walking
	// backward from the new log's date.
	missed := MissedPeriods(previous, post.StartDate, post.LengthDays)
	backfilled := make([]model.HabitLog, 0, missed)
	for _, date := range BackfillDates(post.StartDate, post.LengthDays, missed) {
		gap, err := w.logs.Insert(ctx, tx, model.HabitLog{
			ID:         uuid.New(),
			HabitID:    post.HabitID,
			StartDate:  date,
			Logged:     false,
			LengthDays: post.LengthDays,
		})
		if err != nil {
			return Logged{}, err
		}
		backfilled = append(backfilled, *gap)
	}

	// 5. New streak from the previous *real* log date — never from the
	// synthetic entries just inserted.
	var previousDate *time.Time
	if previous != nil {
		previousDate = &previous.StartDate
	}
	streak, err := NextStreak(habit.StreakCount, previousDate, post.StartDate)
	if err != nil {
		return Logged{}, err
	}

	// 6. The requested log itself.
	created, err := w.logs.Insert(ctx, tx, model.HabitLog{
		ID:         uuid.New(),
		HabitID:    post.HabitID,
		StartDate:  post.StartDate,
		Logged:     post.Logged,
		LengthDays: post.LengthDays,
	})
	if err != nil {
		return Logged{}, err
	}

	// 7. Persist the recomputed streak.
	ok, err := w.habits.UpdateStreak(ctx, tx, habit.ID, streak)
	if err != nil {
		return Logged{}, err
	}
	if !ok {
		return Logged{}, apperr.Wrap(apperr.ErrApp, "streak update touched no rows for habit %s", habit.ID)
	}
	habit.StreakCount = streak

	return Logged{Habit: *habit, Log: *created, Backfilled: backfilled}, nil
}
