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

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"habitd/internal/habits/model"

	"github.com/google/uuid"
)

// HabitRepository provides typed reads/writes over the habits table. All
// habit access is scoped by owner: a habit another user owns behaves exactly
// like an absent habit.
type HabitRepository struct{}

func NewHabitRepository() *HabitRepository { return &HabitRepository{} }

// scanHabit maps one row to a model.Habit. Typed mapping per entity — no
// reflection, no dictionary-keyed field access.
func scanHabit(row interface{ Scan(...interface{}) error }) (*model.Habit, error) {
	var (
		h      model.Habit
		id     string
		userID string
	)
	if err := row.Scan(&id, &userID, &h.Name, &h.StreakCount); err != nil {
		return nil, err
	}
	var err error
	if h.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("habit id %q: %w", id, err)
	}
	if h.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("habit user id %q: %w", userID, err)
	}
	return &h, nil
}

// GetByID returns the habit, or nil when it does not exist or userID does not
// own it.
func (r *HabitRepository) GetByID(ctx context.Context, q Querier, userID, habitID uuid.UUID) (*model.Habit, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, user_id, name, streak_count FROM habits WHERE id = ? AND user_id = ?`,
		habitID.String(), userID.String())
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit %s: %w", habitID, err)
	}
	return h, nil
}

// GetAllByUser returns every habit the user owns, name-ordered. An empty
// slice, not nil, signals a user with no habits.
func (r *HabitRepository) GetAllByUser(ctx context.Context, q Querier, userID uuid.UUID) ([]model.Habit, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, user_id, name, streak_count FROM habits WHERE user_id = ? ORDER BY name, id`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list habits for %s: %w", userID, err)
	}
	defer rows.Close()

	habits := make([]model.Habit, 0)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list habits for %s: %w", userID, err)
	}
	return habits, nil
}

// Insert writes a new habit and returns it.
func (r *HabitRepository) Insert(ctx context.Context, q Querier, h model.Habit) (*model.Habit, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO habits (id, user_id, name, streak_count) VALUES (?, ?, ?, ?)`,
		h.ID.String(), h.UserID.String(), h.Name, h.StreakCount)
	if err != nil {
		return nil, fmt.Errorf("insert habit %s: %w", h.ID, err)
	}
	return &h, nil
}

// UpdateName renames a habit. Returns false when no owned row matched.
func (r *HabitRepository) UpdateName(ctx context.Context, q Querier, userID, habitID uuid.UUID, name string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE habits SET name = ? WHERE id = ? AND user_id = ?`,
		name, habitID.String(), userID.String())
	if err != nil {
		return false, fmt.Errorf("rename habit %s: %w", habitID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rename habit %s: %w", habitID, err)
	}
	return n > 0, nil
}

// UpdateStreak sets the streak counter. Only the log-habit workflow calls
// this, inside its transaction.
func (r *HabitRepository) UpdateStreak(ctx context.Context, q Querier, habitID uuid.UUID, streak uint32) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE habits SET streak_count = ? WHERE id = ?`,
		streak, habitID.String())
	if err != nil {
		return false, fmt.Errorf("update streak for %s: %w", habitID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update streak for %s: %w", habitID, err)
	}
	return n > 0, nil
}

// Delete removes a habit and its logs. Returns false when no owned row
// matched.
func (r *HabitRepository) Delete(ctx context.Context, q Querier, userID, habitID uuid.UUID) (bool, error) {
	if _, err := q.ExecContext(ctx,
		`DELETE FROM habit_logs WHERE habit_id IN (SELECT id FROM habits WHERE id = ? AND user_id = ?)`,
		habitID.String(), userID.String()); err != nil {
		return false, fmt.Errorf("delete logs of habit %s: %w", habitID, err)
	}
	res, err := q.ExecContext(ctx,
		`DELETE FROM habits WHERE id = ? AND user_id = ?`,
		habitID.String(), userID.String())
	if err != nil {
		return false, fmt.Errorf("delete habit %s: %w", habitID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete habit %s: %w", habitID, err)
	}
	return n > 0, nil
}
