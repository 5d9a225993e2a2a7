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
	"time"

	"habitd/internal/habits/model"

	"github.com/google/uuid"
)

// HabitLogRepository provides typed reads/writes over the habit_logs table.
// Ownership checks join through habits so a log under someone else's habit is
// indistinguishable from an absent one.
type HabitLogRepository struct{}

func NewHabitLogRepository() *HabitLogRepository { return &HabitLogRepository{} }

const habitLogColumns = `l.id, l.habit_id, l.start_date, l.logged, l.length_days`

func scanHabitLog(row interface{ Scan(...interface{}) error }) (*model.HabitLog, error) {
	var (
		l       model.HabitLog
		id      string
		habitID string
		date    string
	)
	if err := row.Scan(&id, &habitID, &date, &l.Logged, &l.LengthDays); err != nil {
		return nil, err
	}
	var err error
	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("habit log id %q: %w", id, err)
	}
	if l.HabitID, err = uuid.Parse(habitID); err != nil {
		return nil, fmt.Errorf("habit log habit id %q: %w", habitID, err)
	}
	if l.StartDate, err = time.ParseInLocation(model.DateLayout, date, time.UTC); err != nil {
		return nil, fmt.Errorf("habit log date %q: %w", date, err)
	}
	return &l, nil
}

// GetByID returns the log, or nil when it is absent or not owned by userID.
func (r *HabitLogRepository) GetByID(ctx context.Context, q Querier, userID, logID uuid.UUID) (*model.HabitLog, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+habitLogColumns+` FROM habit_logs l
		 JOIN habits h ON h.id = l.habit_id
		 WHERE l.id = ? AND h.user_id = ?`,
		logID.String(), userID.String())
	l, err := scanHabitLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit log %s: %w", logID, err)
	}
	return l, nil
}

// ExistsForDate reports whether a log already covers (habitID, date). This is
// the workflow's duplicate pre-check; the UNIQUE index backs it up.
func (r *HabitLogRepository) ExistsForDate(ctx context.Context, q Querier, habitID uuid.UUID, date time.Time) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM habit_logs WHERE habit_id = ? AND start_date = ?`,
		habitID.String(), model.DateOnly(date).Format(model.DateLayout)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check log for %s@%s: %w", habitID, date.Format(model.DateLayout), err)
	}
	return true, nil
}

// MostRecent returns the habit's latest log by start date, or nil when the
// habit has no logs yet.
func (r *HabitLogRepository) MostRecent(ctx context.Context, q Querier, habitID uuid.UUID) (*model.HabitLog, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+habitLogColumns+` FROM habit_logs l
		 WHERE l.habit_id = ? ORDER BY l.start_date DESC LIMIT 1`,
		habitID.String())
	l, err := scanHabitLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most recent log for %s: %w", habitID, err)
	}
	return l, nil
}

// GetPage returns one page of a habit's logs, newest first. Pages are
// 1-based; a page past the end is an empty slice.
func (r *HabitLogRepository) GetPage(ctx context.Context, q Querier, userID, habitID uuid.UUID, page, pageSize int) ([]model.HabitLog, error) {
	if page < 1 {
		page = 1
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+habitLogColumns+` FROM habit_logs l
		 JOIN habits h ON h.id = l.habit_id
		 WHERE l.habit_id = ? AND h.user_id = ?
		 ORDER BY l.start_date DESC
		 LIMIT ? OFFSET ?`,
		habitID.String(), userID.String(), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("page %d of logs for %s: %w", page, habitID, err)
	}
	defer rows.Close()

	logs := make([]model.HabitLog, 0, pageSize)
	for rows.Next() {
		l, err := scanHabitLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit log: %w", err)
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("page %d of logs for %s: %w", page, habitID, err)
	}
	return logs, nil
}

// Insert writes a new log. The start date is normalized to its calendar day
// before storage.
func (r *HabitLogRepository) Insert(ctx context.Context, q Querier, l model.HabitLog) (*model.HabitLog, error) {
	l.StartDate = model.DateOnly(l.StartDate)
	_, err := q.ExecContext(ctx,
		`INSERT INTO habit_logs (id, habit_id, start_date, logged, length_days) VALUES (?, ?, ?, ?, ?)`,
		l.ID.String(), l.HabitID.String(), l.StartDate.Format(model.DateLayout), l.Logged, l.LengthDays)
	if err != nil {
		return nil, fmt.Errorf("insert habit log %s: %w", l.ID, err)
	}
	return &l, nil
}

// UpdateLogged flips the logged flag — the one mutable field after creation.
// Returns false when no owned row matched.
func (r *HabitLogRepository) UpdateLogged(ctx context.Context, q Querier, userID, logID uuid.UUID, logged bool) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE habit_logs SET logged = ?
		 WHERE id = ? AND habit_id IN (SELECT id FROM habits WHERE user_id = ?)`,
		logged, logID.String(), userID.String())
	if err != nil {
		return false, fmt.Errorf("patch habit log %s: %w", logID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("patch habit log %s: %w", logID, err)
	}
	return n > 0, nil
}

// Delete removes a log. Returns false when no owned row matched.
func (r *HabitLogRepository) Delete(ctx context.Context, q Querier, userID, logID uuid.UUID) (bool, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM habit_logs
		 WHERE id = ? AND habit_id IN (SELECT id FROM habits WHERE user_id = ?)`,
		logID.String(), userID.String())
	if err != nil {
		return false, fmt.Errorf("delete habit log %s: %w", logID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete habit log %s: %w", logID, err)
	}
	return n > 0, nil
}
