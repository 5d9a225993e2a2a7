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

// Package api is the thin HTTP shell over the cached services, the rate
// limiter and the event hub. It owns exactly two things the core does not:
// decoding/encoding request bodies and mapping error kinds to status codes.
// Authentication is a collaborator; the authenticated user arrives in the
// X-User-ID header.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"habitd/internal/habits/apperr"
	"habitd/internal/habits/events"
	"habitd/internal/habits/model"
	"habitd/internal/habits/ratelimit"
	"habitd/internal/habits/service"

	"github.com/google/uuid"
)

// Server handles the HTTP requests for the habit service.
type Server struct {
	users   *service.Users
	habits  service.HabitService
	logs    service.HabitLogService
	limiter *ratelimit.Limiter
	hub     *events.Hub
}

// NewServer wires the HTTP surface. users and hub may be nil when
// registration or the SSE endpoint is not wanted (tests, tools).
func NewServer(users *service.Users, habits service.HabitService, logs service.HabitLogService, limiter *ratelimit.Limiter, hub *events.Hub) *Server {
	return &Server{users: users, habits: habits, logs: logs, limiter: limiter, hub: hub}
}

// RegisterRoutes sets up the HTTP routes on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	if s.users != nil {
		mux.HandleFunc("POST /users", s.handleRegisterUser)
	}
	mux.HandleFunc("GET /habits", s.handleGetHabits)
	mux.HandleFunc("POST /habits", s.handleAddHabit)
	mux.HandleFunc("GET /habits/{id}", s.handleGetHabit)
	mux.HandleFunc("PATCH /habits/{id}", s.handleUpdateHabit)
	mux.HandleFunc("DELETE /habits/{id}", s.handleDeleteHabit)

	mux.HandleFunc("POST /habits/{id}/logs", s.handleLogHabit)
	mux.HandleFunc("GET /habits/{id}/logs", s.handleGetLogsPage)
	mux.HandleFunc("GET /habits/{id}/logs/recent", s.handleGetMostRecentLog)

	mux.HandleFunc("GET /logs/{id}", s.handleGetLog)
	mux.HandleFunc("PATCH /logs/{id}", s.handleUpdateLog)
	mux.HandleFunc("DELETE /logs/{id}", s.handleDeleteLog)

	if s.hub != nil {
		mux.HandleFunc("GET /events", s.handleEvents)
	}
}

// Handler returns the complete handler for an http.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// userID extracts the authenticated user from the X-User-ID header.
func userID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, apperr.Wrap(apperr.ErrBadRequest, "X-User-ID header is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.ErrBadRequest, "X-User-ID is not a UUID")
	}
	return id, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.ErrBadRequest, "%s is not a UUID", name)
	}
	return id, nil
}

// writeError maps the apperr kinds to status codes. This mapping lives here
// and nowhere else.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrTooManyRequests):
		status = http.StatusTooManyRequests
	default:
		status = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// notFound is the uniform 404 for nil reads.
func notFound(w http.ResponseWriter, what string, id uuid.UUID) {
	http.Error(w, fmt.Sprintf("%s %s not found", what, id), http.StatusNotFound)
}

// handleRegisterUser creates a user row. No X-User-ID here: registration is
// how a caller obtains one.
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.CheckRequest(r); err != nil {
		writeError(w, err)
		return
	}
	var post model.PostUser
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		writeError(w, apperr.Wrap(apperr.ErrBadRequest, "invalid body: %v", err))
		return
	}
	u, err := s.users.Register(r.Context(), post)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetHabits(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	habits, err := s.habits.GetAll(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (s *Server) handleAddHabit(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.limiter.CheckRequest(r); err != nil {
		writeError(w, err)
		return
	}
	var post model.PostHabit
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		writeError(w, apperr.Wrap(apperr.ErrBadRequest, "invalid body: %v", err))
		return
	}
	h, err := s.habits.Add(r.Context(), user, post)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	h, err := s.habits.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if h == nil {
		notFound(w, "habit", id)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.limiter.CheckRequest(r); err != nil {
		writeError(w, err)
		return
	}
	var patch model.PatchHabit
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apperr.Wrap(apperr.ErrBadRequest, "invalid body: %v", err))
		return
	}
	patch.ID = id
	ok, err := s.habits.Update(r.Context(), user, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		notFound(w, "habit", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.limiter.CheckRequest(r); err != nil {
		writeError(w, err)
		return
	}
	ok, err := s.habits.Delete(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		notFound(w, "habit", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLogHabit runs the workflow behind the rate limiter. The habit id
// comes from the path; a mismatching id in the body is rejected rather than
// silently overridden.
func (s *Server) handleLogHabit(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	habitID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.limiter.CheckRequest(r); err != nil {
		writeError(w, err)
		return
	}
	var post model.PostHabitLog
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		writeError(w, apperr.Wrap(apperr.ErrBadRequest, "invalid body: %v", err))
		return
	}
	if post.HabitID != uuid.Nil && post.HabitID != habitID {
		writeError(w, apperr.Wrap(apperr.ErrBadRequest, "body habit_id does not match path"))
		return
	}
	post.HabitID = habitID
	out, err := s.logs.Log(r.Context(), post, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleGetLogsPage(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	habitID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, apperr.Wrap(apperr.ErrBadRequest, "page must be a positive integer"))
			return
		}
	}
	logs, err := s.logs.GetPage(r.Context(), user, habitID, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleGetMostRecentLog(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	habitID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := s.logs.GetMostRecent(r.Context(), user, habitID)
	if err != nil {
		writeError(w, err)
		return
	}
	if l == nil {
		notFound(w, "log for habit", habitID)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := s.logs.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if l == nil {
		notFound(w, "habit log", id)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.limiter.CheckRequest(r); err != nil {
		writeError(w, err)
		return
	}
	var patch model.PatchHabitLog
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apperr.Wrap(apperr.ErrBadRequest, "invalid body: %v", err))
		return
	}
	patch.ID = id
	ok, err := s.logs.Update(r.Context(), user, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		notFound(w, "habit log", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.limiter.CheckRequest(r); err != nil {
		writeError(w, err)
		return
	}
	ok, err := s.logs.Delete(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		notFound(w, "habit log", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents streams the user's post-commit notifications as server-sent
// events until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.hub.Subscribe(user)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

// NewHTTPServer builds an http.Server with production timeouts. SSE streams
// must outlive any fixed write timeout, so WriteTimeout is disabled when the
// events endpoint is registered.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	writeTimeout := 10 * time.Second
	if s.hub != nil {
		writeTimeout = 0
	}
	return &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}
}
