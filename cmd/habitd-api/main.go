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

// Package main is the entry point for the habit tracking API.
//
// It wires the full stack: sqlite storage, the transactional log-habit
// workflow, the TTL cache (in-process or Redis), the cached service
// decorators, the per-IP rate limiter, the event hub feeding /events, and
// the optional Prometheus endpoint — then serves HTTP until a signal asks
// for a graceful stop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitd/internal/habits/api"
	"habitd/internal/habits/cache"
	"habitd/internal/habits/events"
	"habitd/internal/habits/ratelimit"
	"habitd/internal/habits/service"
	"habitd/internal/habits/storage"
	"habitd/internal/habits/telemetry"
	"habitd/internal/habits/workflow"
	"habitd/internal/sinks"
)

func main() {
	// Configuration knobs. Defaults are production-ready; the cache_backend
	// selector is the only flag that needs infrastructure (redis).
	dbPath := flag.String("db_path", "habitd.db", "Path to the sqlite database file (\":memory:\" for ephemeral)")
	httpAddr := flag.String("http_addr", ":8080", "HTTP listen address (e.g., :8080)")
	metricsAddr := flag.String("metrics_addr", "", "If non-empty, expose Prometheus /metrics on this address (e.g., :9090)")

	cacheBackend := flag.String("cache_backend", "memory", "Cache backend: memory|redis")
	redisAddr := flag.String("redis_addr", "", "Redis address for the redis cache backend (e.g., 127.0.0.1:6379)")
	cacheTTL := flag.Duration("cache_ttl", service.DefaultCacheTTL, "Lifetime of cached entries and version tokens")
	janitorInterval := flag.Duration("cache_janitor_interval", time.Minute, "Sweep cadence for expired entries (memory backend)")

	rateLimit := flag.Int64("rate_limit", ratelimit.DefaultLimit, "Requests allowed per client IP per window")
	rateWindow := flag.Duration("rate_window", ratelimit.DefaultWindow, "Rate limit window; expiry refreshes on every request (sliding)")

	pageSize := flag.Int("page_size", service.DefaultPageSize, "Habit logs per page")
	eventBuffer := flag.Int("event_buffer", 16, "Per-subscriber event channel depth; overflow drops")
	eventLog := flag.String("event_log", "", "If non-empty, append post-commit events as JSON lines to this file")
	flag.Parse()

	// Storage first; nothing works without it.
	st, err := storage.Open(*dbPath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer st.Close()

	// Shared TTL cache; the cached services and the rate limiter both sit on
	// it, so with the redis backend several instances share one view.
	c, stopCache, err := cache.Build(*cacheBackend, cache.Options{
		RedisAddr:       *redisAddr,
		JanitorInterval: *janitorInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer stopCache()

	telemetry.Serve(*metricsAddr)

	habitRepo := storage.NewHabitRepository()
	logRepo := storage.NewHabitLogRepository()
	userRepo := storage.NewUserRepository()

	logHabit := workflow.NewLogHabit(st, habitRepo, logRepo)
	users := service.NewUsers(st, userRepo)
	habits := service.NewHabits(st, habitRepo, logRepo, userRepo, nil)
	habitLogs := service.NewHabitLogs(st, habitRepo, logRepo, logHabit, *pageSize)

	hub := events.NewHub(*eventBuffer)
	var sink events.Sink = hub
	if *eventLog != "" {
		fileSink, err := sinks.NewEventFileSink(*eventLog)
		if err != nil {
			log.Fatalf("event log: %v", err)
		}
		defer fileSink.Close()
		sink = events.Multi{hub, fileSink}
	}
	cachedHabits := service.NewCachedHabits(habits, c, *cacheTTL, sink)
	cachedLogs := service.NewCachedHabitLogs(habitLogs, c, *cacheTTL, sink)

	limiter := ratelimit.New(c, *rateLimit, *rateWindow)

	apiServer := api.NewServer(users, cachedHabits, cachedLogs, limiter, hub)
	httpServer := apiServer.NewHTTPServer(*httpAddr)

	go func() {
		fmt.Printf("Habit API server listening on %s\n", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", *httpAddr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	fmt.Println("\nShutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	fmt.Println("Server gracefully stopped.")
}
