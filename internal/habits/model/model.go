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

// Package model defines the domain records shared by the storage, workflow,
// service and cache layers. Records are plain structs; all behavior that
// mutates them lives in the workflow and service packages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical on-disk and over-the-wire form of a habit log
// start date. Time of day is never significant for streak or backfill math.
const DateLayout = "2006-01-02"

// MinLogLengthDays and MaxLogLengthDays bound the period length of a single
// habit log. A log shorter than a day or longer than a month is rejected
// before it reaches the workflow.
const (
	MinLogLengthDays = 1
	MaxLogLengthDays = 30
)

// User owns habits. Only existence matters to this core; authentication is a
// collaborator concern.
type User struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PostUser is the registration request shape.
type PostUser struct {
	Name string `json:"name"`
}

// Habit is a recurring practice tracked for completion. StreakCount is only
// ever written by the log-habit workflow; direct CRUD may rename a habit but
// never touches the streak.
type Habit struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	StreakCount uint32    `json:"streak_count"`
}

// HabitLog asserts whether a habit was completed for one period starting at
// StartDate. Logged is false for backfilled gap entries. LengthDays is the
// period length in days (1..30). Once created, only the Logged flag may
// change, via the patch path.
type HabitLog struct {
	ID         uuid.UUID `json:"id"`
	HabitID    uuid.UUID `json:"habit_id"`
	StartDate  time.Time `json:"start_date"`
	Logged     bool      `json:"logged"`
	LengthDays int       `json:"length_days"`
}

// PostHabitLog is the request shape for creating a log through the workflow.
type PostHabitLog struct {
	HabitID    uuid.UUID `json:"habit_id"`
	StartDate  time.Time `json:"start_date"`
	Logged     bool      `json:"logged"`
	LengthDays int       `json:"length_days"`
}

// PatchHabitLog flips the logged flag on an existing log. The only mutable
// field of a habit log after creation.
type PatchHabitLog struct {
	ID     uuid.UUID `json:"id"`
	Logged bool      `json:"logged"`
}

// PostHabit / PatchHabit are the direct-CRUD shapes for habits.
type PostHabit struct {
	Name string `json:"name"`
}

type PatchHabit struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DateOnly strips the time-of-day and location from t, returning midnight UTC
// of the same calendar date. All streak and backfill arithmetic runs on
// DateOnly values so two logs on the same day always compare equal.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b (positive when b is
// later). Both ends are normalized with DateOnly first.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)) / (24 * time.Hour))
}

// ValidLogLength reports whether a period length is inside the accepted
// 1..30 day range.
func ValidLogLength(days int) bool {
	return days >= MinLogLengthDays && days <= MaxLogLengthDays
}
