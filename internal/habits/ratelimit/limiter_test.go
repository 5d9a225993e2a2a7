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

package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"habitd/internal/habits/apperr"
	"habitd/internal/habits/cache"
)

func newTestLimiter(t *testing.T, limit int64, window time.Duration) (*Limiter, *cache.Memory) {
	t.Helper()
	c := cache.NewMemory(time.Hour)
	t.Cleanup(c.Stop)
	return New(c, limit, window), c
}

func counter(t *testing.T, c *cache.Memory, ip string) int64 {
	t.Helper()
	raw, ok, err := c.Get(context.Background(), rateKey(ip))
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		t.Fatalf("parse counter %q: %v", raw, err)
	}
	return n
}

// TestCheck_DenialDoesNotIncrement: with limit 2, two checks pass and bring
// the counter to 2; the third fails with TooManyRequests and the counter
// stays at 2.
func TestCheck_DenialDoesNotIncrement(t *testing.T) {
	l, c := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()
	const ip = "203.0.113.7"

	for i := 0; i < 2; i++ {
		if err := l.Check(ctx, ip); err != nil {
			t.Fatalf("check #%d: %v", i+1, err)
		}
	}
	if n := counter(t, c, ip); n != 2 {
		t.Fatalf("counter = %d after two allowed checks, want 2", n)
	}

	err := l.Check(ctx, ip)
	if !errors.Is(err, apperr.ErrTooManyRequests) {
		t.Fatalf("expected TooManyRequests, got %v", err)
	}
	if n := counter(t, c, ip); n != 2 {
		t.Fatalf("counter = %d after denial, want still 2", n)
	}
}

// TestCheck_DenialRefreshesWindow: a denied check re-arms the counter's TTL,
// so a client that keeps hammering never earns a reset.
func TestCheck_DenialRefreshesWindow(t *testing.T) {
	l, c := newTestLimiter(t, 1, 40*time.Millisecond)
	ctx := context.Background()
	const ip = "203.0.113.8"

	if err := l.Check(ctx, ip); err != nil {
		t.Fatalf("first check: %v", err)
	}
	// Keep getting denied just before each expiry; the window must slide.
	for i := 0; i < 3; i++ {
		time.Sleep(25 * time.Millisecond)
		if err := l.Check(ctx, ip); !errors.Is(err, apperr.ErrTooManyRequests) {
			t.Fatalf("denial #%d: expected TooManyRequests, got %v", i+1, err)
		}
	}
	if n := counter(t, c, ip); n != 1 {
		t.Fatalf("counter = %d, want 1 kept alive across denials", n)
	}
}

// TestCheck_WindowExpiryResets: after one full quiet window the counter is
// gone and the client starts fresh.
func TestCheck_WindowExpiryResets(t *testing.T) {
	l, _ := newTestLimiter(t, 1, 20*time.Millisecond)
	ctx := context.Background()
	const ip = "203.0.113.9"

	if err := l.Check(ctx, ip); err != nil {
		t.Fatalf("first check: %v", err)
	}
	if err := l.Check(ctx, ip); !errors.Is(err, apperr.ErrTooManyRequests) {
		t.Fatalf("expected denial inside the window, got %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if err := l.Check(ctx, ip); err != nil {
		t.Fatalf("check after quiet window: %v", err)
	}
}

// TestCheck_IPsAreIndependent: one saturated client never affects another.
func TestCheck_IPsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if err := l.Check(ctx, "198.51.100.1"); err != nil {
		t.Fatalf("first ip: %v", err)
	}
	if err := l.Check(ctx, "198.51.100.1"); !errors.Is(err, apperr.ErrTooManyRequests) {
		t.Fatalf("expected denial for saturated ip, got %v", err)
	}
	if err := l.Check(ctx, "198.51.100.2"); err != nil {
		t.Fatalf("independent ip was denied: %v", err)
	}
}

func TestCheck_EmptyIPIsBadRequest(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	if err := l.Check(context.Background(), ""); !errors.Is(err, apperr.ErrBadRequest) {
		t.Fatalf("expected BadRequest for empty ip, got %v", err)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
		wantErr    bool
	}{
		{"host port pair", "10.0.0.1:54321", "", "10.0.0.1", false},
		{"ipv6 host port pair", "[2001:db8::1]:443", "", "2001:db8::1", false},
		{"bare ip without port", "10.0.0.2", "", "10.0.0.2", false},
		{"forwarded first hop", "", "203.0.113.5, 10.0.0.1", "203.0.113.5", false},
		{"forwarded with spaces", "", "  203.0.113.6  ", "203.0.113.6", false},
		{"nothing resolvable", "", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "http://example.test/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			got, err := ClientIP(r)
			if tc.wantErr {
				if !errors.Is(err, apperr.ErrBadRequest) {
					t.Fatalf("expected BadRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestCheckRequest wires ClientIP into Check end to end.
func TestCheckRequest(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)

	r, _ := http.NewRequest(http.MethodPost, "http://example.test/habits", nil)
	r.RemoteAddr = "192.0.2.1:1234"

	if err := l.CheckRequest(r); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := l.CheckRequest(r); !errors.Is(err, apperr.ErrTooManyRequests) {
		t.Fatalf("expected denial on second request, got %v", err)
	}
}
