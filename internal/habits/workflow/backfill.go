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
	"time"

	"habitd/internal/habits/model"
)

// MissedPeriods determines how many whole periods were skipped between the
// previous log and a new one dated newDate, i.e. how many synthetic gap
// entries the workflow must insert. previous is nil for a first-ever log,
// which never backfills.
//
// A gap of exactly one period is normal cadence. Only once the excess beyond
// one period itself exceeds a full period do we synthesize entries, one per
// additional whole period. The division floors: remainder days stay uncovered
// by any synthetic log.
func MissedPeriods(previous *model.HabitLog, newDate time.Time, lengthDays int) int {
	if previous == nil || lengthDays <= 0 {
		return 0
	}
	gapDays := model.DaysBetween(previous.StartDate, newDate)
	excessDays := gapDays - lengthDays
	if excessDays > lengthDays {
		return excessDays / lengthDays
	}
	return 0
}

// BackfillDates returns the start dates for n synthetic entries, walking
// backward from newDate in lengthDays steps: newDate-1p, newDate-2p, ...
// Oldest last; order does not matter to the caller beyond determinism.
func BackfillDates(newDate time.Time, lengthDays, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	d := model.DateOnly(newDate)
	for i := 1; i <= n; i++ {
		dates = append(dates, d.AddDate(0, 0, -i*lengthDays))
	}
	return dates
}
