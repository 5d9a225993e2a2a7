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

// Package events carries post-commit notifications from the mutation paths to
// the server-sent-event feeder. Publishing is strictly best-effort: it never
// blocks, never returns an error to the caller, and a slow or absent
// subscriber just loses the event. Nothing downstream of a commit may affect
// the workflow's outcome.
package events

import (
	"fmt"
	"sync"

	"habitd/internal/habits/telemetry"

	"github.com/google/uuid"
)

// Event types published by the mutation paths.
const (
	TypeHabitLogged     = "habit.logged"
	TypeHabitCreated    = "habit.created"
	TypeHabitUpdated    = "habit.updated"
	TypeHabitDeleted    = "habit.deleted"
	TypeHabitLogUpdated = "habit_log.updated"
	TypeHabitLogDeleted = "habit_log.deleted"
)

// Event is one post-commit notification addressed to a single user.
type Event struct {
	UserID  uuid.UUID   `json:"user_id"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Sink receives post-commit notifications. Implementations must not block
// and must swallow their own failures.
type Sink interface {
	Publish(userID uuid.UUID, eventType string, payload interface{})
}

// Hub fans events out to per-user subscriber channels, feeding the SSE
// endpoint. Subscriber channels are buffered; when a buffer is full the event
// is dropped and counted, never queued against the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan Event]struct{}
	// buffer is the per-subscriber channel depth.
	buffer int
}

// NewHub creates a hub with the given per-subscriber buffer (min 1).
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[uuid.UUID]map[chan Event]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a listener for one user's events. The returned cancel
// function removes the subscription and closes the channel; call it exactly
// once, after which the channel drains and closes.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber of userID without
// blocking. Events for users with no subscriber, or subscribers with full
// buffers, are dropped and counted.
func (h *Hub) Publish(userID uuid.UUID, eventType string, payload interface{}) {
	ev := Event{UserID: userID, Type: eventType, Payload: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	listeners := h.subs[userID]
	if len(listeners) == 0 {
		telemetry.RecordEventDropped()
		return
	}
	for ch := range listeners {
		select {
		case ch <- ev:
		default:
			telemetry.RecordEventDropped()
		}
	}
}

// LogSink prints events to stdout. Useful when running without the SSE
// surface; also the zero-infrastructure default for tools and tests.
type LogSink struct{}

func (LogSink) Publish(userID uuid.UUID, eventType string, payload interface{}) {
	fmt.Printf("[event] user=%s type=%s payload=%v\n", userID, eventType, payload)
}

// Discard drops everything. Tests use it where event traffic is noise.
type Discard struct{}

func (Discard) Publish(uuid.UUID, string, interface{}) {}

// Multi fans one publish out to several sinks in order. Used to feed the SSE
// hub and a durable sink from the same mutation path.
type Multi []Sink

func (m Multi) Publish(userID uuid.UUID, eventType string, payload interface{}) {
	for _, s := range m {
		s.Publish(userID, eventType, payload)
	}
}
