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
	"testing"

	"habitd/internal/habits/model"
)

func prevLog(dateStr string, lengthDays int) *model.HabitLog {
	return &model.HabitLog{StartDate: date(dateStr), LengthDays: lengthDays}
}

// TestMissedPeriods_Table pins the gap arithmetic: zero whenever
// gapDays <= 2*length, floor((gap-length)/length) beyond that.
func TestMissedPeriods_Table(t *testing.T) {
	cases := []struct {
		name    string
		prev    *model.HabitLog
		newDate string
		length  int
		want    int
	}{
		{"first ever log never backfills", nil, "2024-01-10", 1, 0},
		{"normal daily cadence", prevLog("2024-01-05", 1), "2024-01-06", 1, 0},
		{"one skipped day is boundary", prevLog("2024-01-05", 1), "2024-01-07", 1, 0},
		{"two skipped days", prevLog("2024-01-05", 1), "2024-01-08", 1, 2},
		{"five day gap daily", prevLog("2024-01-05", 1), "2024-01-10", 1, 4},
		{"weekly normal cadence", prevLog("2024-01-01", 7), "2024-01-08", 7, 0},
		{"weekly boundary gap", prevLog("2024-01-01", 7), "2024-01-15", 7, 0},
		{"weekly one missed period", prevLog("2024-01-01", 7), "2024-01-22", 7, 2},
		{"remainder floors", prevLog("2024-01-01", 7), "2024-01-26", 7, 2},
		{"same day", prevLog("2024-01-05", 1), "2024-01-05", 1, 0},
		{"backdated", prevLog("2024-01-05", 1), "2024-01-02", 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MissedPeriods(tc.prev, date(tc.newDate), tc.length)
			if got != tc.want {
				t.Fatalf("MissedPeriods = %d, want %d", got, tc.want)
			}
		})
	}
}

// TestMissedPeriods_BoundaryProperty sweeps daily gaps and checks the closed
// form: 0 for gap <= 2, (gap-1)/1 past that.
func TestMissedPeriods_BoundaryProperty(t *testing.T) {
	start := date("2024-01-01")
	prev := prevLog("2024-01-01", 1)
	for gap := 0; gap <= 40; gap++ {
		newDate := start.AddDate(0, 0, gap)
		want := 0
		if gap > 2 {
			want = gap - 1
		}
		if got := MissedPeriods(prev, newDate, 1); got != want {
			t.Fatalf("gap %d: MissedPeriods = %d, want %d", gap, got, want)
		}
	}
}

// TestBackfillDates walks backward from the new date in period steps.
func TestBackfillDates(t *testing.T) {
	got := BackfillDates(date("2024-01-10"), 1, 4)
	want := []string{"2024-01-09", "2024-01-08", "2024-01-07", "2024-01-06"}
	if len(got) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Format(model.DateLayout) != w {
			t.Fatalf("date[%d] = %s, want %s", i, got[i].Format(model.DateLayout), w)
		}
	}
}

func TestBackfillDates_WeeklySteps(t *testing.T) {
	got := BackfillDates(date("2024-02-01"), 7, 2)
	want := []string{"2024-01-25", "2024-01-18"}
	for i, w := range want {
		if got[i].Format(model.DateLayout) != w {
			t.Fatalf("date[%d] = %s, want %s", i, got[i].Format(model.DateLayout), w)
		}
	}
}

func TestBackfillDates_Empty(t *testing.T) {
	if got := BackfillDates(date("2024-01-10"), 1, 0); len(got) != 0 {
		t.Fatalf("expected no dates, got %d", len(got))
	}
}
