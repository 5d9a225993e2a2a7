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

// Package ratelimit guards the write path with a per-IP request counter on
// the shared TTL cache. The window slides: every check, allowed or denied,
// refreshes the counter's expiry, so a client hammering the endpoint stays
// limited until it goes fully quiet for one whole window.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"habitd/internal/habits/apperr"
	"habitd/internal/habits/cache"
	"habitd/internal/habits/telemetry"
)

// Defaults mirror the production configuration: 500 requests per rolling
// 5 minute window.
const (
	DefaultLimit  = 500
	DefaultWindow = 5 * time.Minute
)

// Limiter is the fixed-window counter. It shares the Cache capability with
// the cached services, so with the Redis backend every instance of the
// service enforces one combined window per client.
type Limiter struct {
	c      cache.Cache
	limit  int64
	window time.Duration
}

// New builds a limiter. Non-positive limit or window select the defaults.
func New(c cache.Cache, limit int64, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{c: c, limit: limit, window: window}
}

func rateKey(ip string) string { return "rate:" + ip }

// Check counts one request from ip. Under the limit it increments the
// counter and refreshes the window; at or over the limit it refreshes the
// window without incrementing and fails with TooManyRequests.
//
// The read-increment-store sequence is not atomic across instances; two
// concurrent checks can both observe the same count. The window is an abuse
// guard, not an exact quota, so the occasional double-admit is accepted.
func (l *Limiter) Check(ctx context.Context, ip string) error {
	if ip == "" {
		return apperr.Wrap(apperr.ErrBadRequest, "client ip is required")
	}
	key := rateKey(ip)

	var count int64
	if raw, ok, err := l.c.Get(ctx, key); err == nil && ok {
		count, _ = strconv.ParseInt(string(raw), 10, 64)
	}

	if count >= l.limit {
		// Keep the counter alive so the client gets no reprieve until it
		// stops entirely for a full window.
		_ = l.c.Set(ctx, key, []byte(strconv.FormatInt(count, 10)), l.window)
		telemetry.RecordRateLimitDenial()
		return apperr.Wrap(apperr.ErrTooManyRequests, "ip %s exceeded %d requests per %s", ip, l.limit, l.window)
	}

	if err := l.c.Set(ctx, key, []byte(strconv.FormatInt(count+1, 10)), l.window); err != nil {
		return fmt.Errorf("store rate counter for %s: %w", ip, err)
	}
	return nil
}

// CheckRequest resolves the client IP from r and runs Check.
func (l *Limiter) CheckRequest(r *http.Request) error {
	ip, err := ClientIP(r)
	if err != nil {
		return err
	}
	return l.Check(r.Context(), ip)
}

// ClientIP prefers the transport-level remote address. When that is absent it
// falls back to the first X-Forwarded-For hop — a trusted-proxy assumption —
// and fails fast with BadRequest when neither yields an address.
func ClientIP(r *http.Request) (string, error) {
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host, nil
		}
		// RemoteAddr without a port (some proxies hand through a bare IP).
		if ip := net.ParseIP(r.RemoteAddr); ip != nil {
			return ip.String(), nil
		}
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first, nil
		}
	}
	return "", apperr.Wrap(apperr.ErrBadRequest, "no client address on request")
}
