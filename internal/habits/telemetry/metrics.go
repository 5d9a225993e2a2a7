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

// Package telemetry holds the process-wide Prometheus metrics for the habit
// engine. Metrics are global and registered eagerly in init(); if no /metrics
// endpoint is exposed, registration is harmless. Label sets are fixed and
// small — never keyed by user or habit id — so cardinality stays bounded.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	workflowCommitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "habitd_workflow_commits_total",
		Help: "Log-habit workflow invocations that committed",
	})
	workflowRollbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "habitd_workflow_rollbacks_total",
		Help: "Log-habit workflow invocations that rolled back",
	})
	backfillPerCommit = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "habitd_backfilled_logs_per_commit",
		Help:    "Synthetic gap entries inserted per committed workflow invocation",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})
	cacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "habitd_cache_hits_total",
		Help: "Cached-service reads answered without an inner service call",
	}, []string{"entity"})
	cacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "habitd_cache_misses_total",
		Help: "Cached-service reads that fell through to the inner service",
	}, []string{"entity"})
	rateLimitDenialsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "habitd_ratelimit_denials_total",
		Help: "Requests denied by the fixed-window rate limiter",
	})
	eventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "habitd_events_dropped_total",
		Help: "Post-commit events dropped because a subscriber was slow or absent",
	})
)

func init() {
	prometheus.MustRegister(
		workflowCommitsTotal,
		workflowRollbacksTotal,
		backfillPerCommit,
		cacheHitsTotal,
		cacheMissesTotal,
		rateLimitDenialsTotal,
		eventsDroppedTotal,
	)
}

// RecordCommit notes a committed workflow invocation and how many synthetic
// entries it inserted.
func RecordCommit(backfilled int) {
	workflowCommitsTotal.Inc()
	backfillPerCommit.Observe(float64(backfilled))
}

// RecordRollback notes a rolled-back workflow invocation.
func RecordRollback() { workflowRollbacksTotal.Inc() }

// RecordCacheHit / RecordCacheMiss note the outcome of a cached read. entity
// is one of the fixed names the service layer uses (habit, habits, habit_log,
// most_recent_log, logs_page).
func RecordCacheHit(entity string)  { cacheHitsTotal.WithLabelValues(entity).Inc() }
func RecordCacheMiss(entity string) { cacheMissesTotal.WithLabelValues(entity).Inc() }

// RecordRateLimitDenial notes a 429.
func RecordRateLimitDenial() { rateLimitDenialsTotal.Inc() }

// RecordEventDropped notes a post-commit event that found no listener.
func RecordEventDropped() { eventsDroppedTotal.Inc() }

// Serve starts a dedicated /metrics server on addr. Returns immediately; the
// server runs until the process exits. Pass the empty string to disable.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
