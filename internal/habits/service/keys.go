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
	"fmt"

	"github.com/google/uuid"
)

// Cache key layout. Single-entity keys are deterministic from the owning
// user and the entity id. Paginated log keys embed a version token instead of
// the habit id directly: bumping the token under logsVersionKey orphans every
// cached page for that habit in one write, no key enumeration needed.
// Orphaned pages age out via TTL; they are unreachable, never served.

func habitKey(userID, habitID uuid.UUID) string {
	return fmt.Sprintf("habit:%s:%s", userID, habitID)
}

func habitsKey(userID uuid.UUID) string {
	return fmt.Sprintf("habits:%s", userID)
}

func habitLogKey(userID, logID uuid.UUID) string {
	return fmt.Sprintf("habitlog:%s:%s", userID, logID)
}

func recentLogKey(userID, habitID uuid.UUID) string {
	return fmt.Sprintf("recentlog:%s:%s", userID, habitID)
}

func logsVersionKey(userID, habitID uuid.UUID) string {
	return fmt.Sprintf("loglist.v:%s:%s", userID, habitID)
}

// logsPageKey embeds the page size alongside the token so a deployment that
// changes its page size cannot serve pages sliced under the old size.
func logsPageKey(token string, pageSize, page int) string {
	return fmt.Sprintf("loglist:%s:%d:%d", token, pageSize, page)
}

// newVersionToken mints the opaque value a bump writes. Any collision-free
// random string works; a GUID keeps it boring.
func newVersionToken() string { return uuid.NewString() }
