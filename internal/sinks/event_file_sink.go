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

// Package sinks holds event sink implementations that live outside the hub:
// durable destinations for the post-commit notification stream.
package sinks

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"habitd/internal/habits/events"

	"github.com/google/uuid"
)

// EventFileSink appends events as JSON lines for audit/replay. It is safe for
// concurrent use and optimized for append-only workloads; like every sink it
// swallows its own failures, so a full disk never fails a request.
type EventFileSink struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	path string

	lastFlush time.Time
}

// NewEventFileSink opens (or creates) the file at path in append mode with a
// buffered writer. Call Close when done.
func NewEventFileSink(path string) (*EventFileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &EventFileSink{f: f, w: bufio.NewWriterSize(f, 1<<20), path: path, lastFlush: time.Now()}, nil
}

// Publish writes the event as one JSON line.
func (s *EventFileSink) Publish(userID uuid.UUID, eventType string, payload interface{}) {
	ev := events.Event{UserID: userID, Type: eventType, Payload: payload}
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.w)
	if err := enc.Encode(&ev); err != nil {
		// best effort: on error, try to flush and retry once
		_ = s.w.Flush()
		_ = enc.Encode(&ev)
	}
	// Flush periodically to bound data loss on crash.
	if time.Since(s.lastFlush) > 100*time.Millisecond {
		_ = s.w.Flush()
		s.lastFlush = time.Now()
	}
}

// Flush forces buffered data to be written to disk.
func (s *EventFileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFlush = time.Now()
	return s.w.Flush()
}

// Close flushes and closes the underlying file.
func (s *EventFileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.w.Flush()
	return s.f.Close()
}

// ReadAllEvents reads an event log file back as a slice. Intended for
// demo/replay tooling.
func ReadAllEvents(path string) ([]events.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []events.Event
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 1<<20)
	scanner.Buffer(buf, 1<<26)
	for scanner.Scan() {
		var ev events.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err == nil {
			out = append(out, ev)
		}
	}
	return out, scanner.Err()
}
