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

package sinks

import (
	"path/filepath"
	"sync"
	"testing"

	"habitd/internal/habits/events"

	"github.com/google/uuid"
)

func TestEventFileSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := NewEventFileSink(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}

	userID := uuid.New()
	s.Publish(userID, events.TypeHabitCreated, map[string]string{"name": "read"})
	s.Publish(userID, events.TypeHabitLogged, nil)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadAllEvents(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d events, want 2", len(got))
	}
	if got[0].UserID != userID || got[0].Type != events.TypeHabitCreated {
		t.Fatalf("first event %+v", got[0])
	}
	if got[1].Type != events.TypeHabitLogged {
		t.Fatalf("second event %+v", got[1])
	}
}

func TestEventFileSink_AppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	for i := 0; i < 2; i++ {
		s, err := NewEventFileSink(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		s.Publish(uuid.New(), events.TypeHabitUpdated, i)
		if err := s.Close(); err != nil {
			t.Fatalf("close #%d: %v", i+1, err)
		}
	}
	got, err := ReadAllEvents(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d events, want 2 appended across opens", len(got))
	}
}

func TestEventFileSink_ConcurrentPublish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := NewEventFileSink(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Publish(uuid.New(), events.TypeHabitLogged, i)
			}
		}()
	}
	wg.Wait()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadAllEvents(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got) != 200 {
		t.Fatalf("read %d events, want 200", len(got))
	}
}
