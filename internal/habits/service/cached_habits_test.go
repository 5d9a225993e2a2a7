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
	"context"
	"errors"
	"testing"
	"time"

	"habitd/internal/habits/cache"
	"habitd/internal/habits/events"
	"habitd/internal/habits/model"

	"github.com/google/uuid"
)

// fakeHabits is a call-counting in-memory HabitService. Error fields, when
// set, fail the corresponding call before touching state.
type fakeHabits struct {
	store map[uuid.UUID]model.Habit

	getCalls    int
	getAllCalls int

	addErr    error
	updateErr error
}

func newFakeHabits() *fakeHabits {
	return &fakeHabits{store: make(map[uuid.UUID]model.Habit)}
}

func (f *fakeHabits) Get(_ context.Context, _, habitID uuid.UUID) (*model.Habit, error) {
	f.getCalls++
	h, ok := f.store[habitID]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (f *fakeHabits) GetAll(_ context.Context, userID uuid.UUID) ([]model.Habit, error) {
	f.getAllCalls++
	out := make([]model.Habit, 0, len(f.store))
	for _, h := range f.store {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHabits) Add(_ context.Context, userID uuid.UUID, post model.PostHabit) (*model.Habit, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	h := model.Habit{ID: uuid.New(), UserID: userID, Name: post.Name}
	f.store[h.ID] = h
	return &h, nil
}

func (f *fakeHabits) Update(_ context.Context, _ uuid.UUID, patch model.PatchHabit) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	h, ok := f.store[patch.ID]
	if !ok {
		return false, nil
	}
	h.Name = patch.Name
	f.store[patch.ID] = h
	return true, nil
}

func (f *fakeHabits) Delete(_ context.Context, _, habitID uuid.UUID) (bool, error) {
	if _, ok := f.store[habitID]; !ok {
		return false, nil
	}
	delete(f.store, habitID)
	return true, nil
}

func newTestCache(t *testing.T) *cache.Memory {
	t.Helper()
	m := cache.NewMemory(time.Hour)
	t.Cleanup(m.Stop)
	return m
}

// TestCachedHabits_AddThenGetIsAHit: a committed Add primes the entity entry,
// so the follow-up Get never reaches the inner service.
func TestCachedHabits_AddThenGetIsAHit(t *testing.T) {
	inner := newFakeHabits()
	s := NewCachedHabits(inner, newTestCache(t), time.Minute, events.Discard{})
	ctx := context.Background()
	userID := uuid.New()

	h, err := s.Add(ctx, userID, model.PostHabit{Name: "read"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := s.Get(ctx, userID, h.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ID != h.ID || got.Name != "read" {
		t.Fatalf("got %+v, want the added habit", got)
	}
	if inner.getCalls != 0 {
		t.Fatalf("inner Get called %d times, want 0 (primed by Add)", inner.getCalls)
	}
}

// TestCachedHabits_GetPopulatesOnMiss: the first read delegates, the second
// serves from cache.
func TestCachedHabits_GetPopulatesOnMiss(t *testing.T) {
	inner := newFakeHabits()
	userID := uuid.New()
	h := model.Habit{ID: uuid.New(), UserID: userID, Name: "stretch"}
	inner.store[h.ID] = h

	s := NewCachedHabits(inner, newTestCache(t), time.Minute, events.Discard{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := s.Get(ctx, userID, h.ID)
		if err != nil {
			t.Fatalf("get #%d: %v", i+1, err)
		}
		if got == nil || got.Name != "stretch" {
			t.Fatalf("get #%d returned %+v", i+1, got)
		}
	}
	if inner.getCalls != 1 {
		t.Fatalf("inner Get called %d times, want 1", inner.getCalls)
	}
}

// TestCachedHabits_AbsentHabitNotCached: nil results are never stored, so a
// habit created after a negative lookup becomes visible immediately.
func TestCachedHabits_AbsentHabitNotCached(t *testing.T) {
	inner := newFakeHabits()
	s := NewCachedHabits(inner, newTestCache(t), time.Minute, events.Discard{})
	ctx := context.Background()
	userID := uuid.New()
	habitID := uuid.New()

	if got, err := s.Get(ctx, userID, habitID); err != nil || got != nil {
		t.Fatalf("expected nil, nil for absent habit, got %v, %v", got, err)
	}
	inner.store[habitID] = model.Habit{ID: habitID, UserID: userID, Name: "late"}

	got, err := s.Get(ctx, userID, habitID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != "late" {
		t.Fatalf("negative lookup was cached; got %+v", got)
	}
}

// TestCachedHabits_FailedAddLeavesCacheAlone: the collection entry primed by
// a read survives a failed mutation untouched.
func TestCachedHabits_FailedAddLeavesCacheAlone(t *testing.T) {
	inner := newFakeHabits()
	userID := uuid.New()
	h := model.Habit{ID: uuid.New(), UserID: userID, Name: "walk"}
	inner.store[h.ID] = h

	s := NewCachedHabits(inner, newTestCache(t), time.Minute, events.Discard{})
	ctx := context.Background()

	if _, err := s.GetAll(ctx, userID); err != nil {
		t.Fatalf("prime collection: %v", err)
	}

	inner.addErr = errors.New("storage down")
	if _, err := s.Add(ctx, userID, model.PostHabit{Name: "x"}); err == nil {
		t.Fatalf("expected Add to surface the inner error")
	}

	if _, err := s.GetAll(ctx, userID); err != nil {
		t.Fatalf("reread collection: %v", err)
	}
	if inner.getAllCalls != 1 {
		t.Fatalf("inner GetAll called %d times, want 1 (entry must survive the failed Add)", inner.getAllCalls)
	}
}

// TestCachedHabits_UpdateInvalidates: a committed rename drops both the
// entity and collection entries.
func TestCachedHabits_UpdateInvalidates(t *testing.T) {
	inner := newFakeHabits()
	userID := uuid.New()
	h := model.Habit{ID: uuid.New(), UserID: userID, Name: "before"}
	inner.store[h.ID] = h

	s := NewCachedHabits(inner, newTestCache(t), time.Minute, events.Discard{})
	ctx := context.Background()

	if _, err := s.Get(ctx, userID, h.ID); err != nil {
		t.Fatalf("prime: %v", err)
	}
	if ok, err := s.Update(ctx, userID, model.PatchHabit{ID: h.ID, Name: "after"}); err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}

	got, err := s.Get(ctx, userID, h.ID)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if got.Name != "after" {
		t.Fatalf("served stale name %q after update", got.Name)
	}
	if inner.getCalls != 2 {
		t.Fatalf("inner Get called %d times, want 2 (entry must be invalidated)", inner.getCalls)
	}
}

// TestCachedHabits_DeleteBumpsLogVersion: deleting a habit rewrites the log
// page version token so any cached pages for it are orphaned.
func TestCachedHabits_DeleteBumpsLogVersion(t *testing.T) {
	inner := newFakeHabits()
	userID := uuid.New()
	h := model.Habit{ID: uuid.New(), UserID: userID, Name: "doomed"}
	inner.store[h.ID] = h

	c := newTestCache(t)
	s := NewCachedHabits(inner, c, time.Minute, events.Discard{})
	ctx := context.Background()

	before := "token-before"
	s.box.setString(ctx, logsVersionKey(userID, h.ID), before)

	if ok, err := s.Delete(ctx, userID, h.ID); err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}

	after, ok := s.box.getString(ctx, logsVersionKey(userID, h.ID))
	if !ok {
		t.Fatalf("version token missing after delete")
	}
	if after == before {
		t.Fatalf("version token not bumped by delete")
	}
}

// errCache fails every operation; the decorators must shrug it off.
type errCache struct{}

func (errCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}
func (errCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}
func (errCache) Delete(context.Context, string) error { return errors.New("backend down") }

// TestCachedHabits_BackendErrorsNeverFailRequests: every operation succeeds
// against a dead cache; reads just always delegate.
func TestCachedHabits_BackendErrorsNeverFailRequests(t *testing.T) {
	inner := newFakeHabits()
	s := NewCachedHabits(inner, errCache{}, time.Minute, events.Discard{})
	ctx := context.Background()
	userID := uuid.New()

	h, err := s.Add(ctx, userID, model.PostHabit{Name: "resilient"})
	if err != nil {
		t.Fatalf("add against dead cache: %v", err)
	}
	if got, err := s.Get(ctx, userID, h.ID); err != nil || got == nil {
		t.Fatalf("get against dead cache: %v, %v", got, err)
	}
	if _, err := s.GetAll(ctx, userID); err != nil {
		t.Fatalf("getall against dead cache: %v", err)
	}
	if ok, err := s.Update(ctx, userID, model.PatchHabit{ID: h.ID, Name: "still here"}); err != nil || !ok {
		t.Fatalf("update against dead cache: ok=%v err=%v", ok, err)
	}
	if ok, err := s.Delete(ctx, userID, h.ID); err != nil || !ok {
		t.Fatalf("delete against dead cache: ok=%v err=%v", ok, err)
	}
	if inner.getCalls != 1 {
		t.Fatalf("inner Get called %d times, want 1 per read", inner.getCalls)
	}
}
