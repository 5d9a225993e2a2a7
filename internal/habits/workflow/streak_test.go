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
	"errors"
	"testing"
	"time"

	"habitd/internal/habits/apperr"
	"habitd/internal/habits/model"
)

func date(s string) time.Time {
	t, err := time.ParseInLocation(model.DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

// TestNextStreak_Table covers the full rule set: +1 exactly on a one-day gap,
// reset to 1 on everything else including same-day and negative gaps.
func TestNextStreak_Table(t *testing.T) {
	cases := []struct {
		name       string
		current    uint32
		mostRecent *time.Time
		newDate    time.Time
		want       uint32
	}{
		{"first log ever", 0, nil, date("2024-01-05"), 1},
		{"consecutive day extends", 3, datePtr("2024-01-05"), date("2024-01-06"), 4},
		{"same day resets", 3, datePtr("2024-01-05"), date("2024-01-05"), 1},
		{"two day gap resets", 3, datePtr("2024-01-05"), date("2024-01-07"), 1},
		{"five day gap resets", 3, datePtr("2024-01-05"), date("2024-01-10"), 1},
		{"backdated log resets", 3, datePtr("2024-01-05"), date("2024-01-02"), 1},
		{"extend from zero with prior log", 0, datePtr("2024-01-05"), date("2024-01-06"), 1},
		{"long streak keeps extending", 364, datePtr("2023-12-31"), date("2024-01-01"), 365},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextStreak(tc.current, tc.mostRecent, tc.newDate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("NextStreak = %d, want %d", got, tc.want)
			}
		})
	}
}

// TestNextStreak_TimeOfDayIgnored ensures hour/minute/zone never change the
// day arithmetic.
func TestNextStreak_TimeOfDayIgnored(t *testing.T) {
	prev := time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC)
	next := time.Date(2024, 1, 6, 0, 1, 0, 0, time.UTC)
	got, err := NextStreak(7, &prev, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 8 {
		t.Fatalf("adjacent calendar days must extend: got %d, want 8", got)
	}
}

// TestNextStreak_InconsistentState: a nonzero streak with no prior log is a
// NotFound-kind failure, never a silent reset.
func TestNextStreak_InconsistentState(t *testing.T) {
	_, err := NextStreak(5, nil, date("2024-01-05"))
	if err == nil {
		t.Fatalf("expected error for nonzero streak without prior log")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound kind, got %v", err)
	}
}

func TestStreakStale(t *testing.T) {
	now := date("2024-01-10")
	lastFresh := &model.HabitLog{StartDate: date("2024-01-09"), LengthDays: 1}
	lastEdge := &model.HabitLog{StartDate: date("2024-01-09"), LengthDays: 1}
	lastOld := &model.HabitLog{StartDate: date("2024-01-05"), LengthDays: 1}
	lastWeekly := &model.HabitLog{StartDate: date("2024-01-04"), LengthDays: 7}

	cases := []struct {
		name   string
		streak uint32
		last   *model.HabitLog
		want   bool
	}{
		{"zero streak never stale", 0, lastOld, false},
		{"positive streak without log is stale", 4, nil, true},
		{"log within one period", 4, lastFresh, false},
		{"log exactly one period old", 4, lastEdge, false},
		{"log beyond one period", 4, lastOld, true},
		{"weekly period still fresh", 4, lastWeekly, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StreakStale(tc.streak, tc.last, now); got != tc.want {
				t.Fatalf("StreakStale = %v, want %v", got, tc.want)
			}
		})
	}
}
