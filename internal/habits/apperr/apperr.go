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

// Package apperr defines the typed error kinds the core exposes upward.
// Callers classify failures with errors.Is against the exported kinds; the
// HTTP boundary (and only the HTTP boundary) maps kinds to status codes.
package apperr

import (
	"errors"
	"fmt"
)

// The five kinds. Each is a sentinel; wrap with Wrap/Errorf to attach detail
// while keeping errors.Is classification intact.
var (
	// ErrNotFound: the referenced entity does not exist (or the caller does
	// not own it — ownership misses are indistinguishable from absence).
	ErrNotFound = errors.New("not found")

	// ErrConflict: a habit log already exists for the (habit, start date) pair.
	ErrConflict = errors.New("conflict")

	// ErrBadRequest: malformed or missing required input.
	ErrBadRequest = errors.New("bad request")

	// ErrTooManyRequests: the rate limiter denied the call.
	ErrTooManyRequests = errors.New("too many requests")

	// ErrApp: generic failure — an inner operation returned null/false or an
	// unexpected error. The workflow rolls back before surfacing this.
	ErrApp = errors.New("application error")
)

// Wrap attaches a message to a kind: Wrap(ErrNotFound, "habit %s", id).
func Wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{kind}, args...)...)
}

// From wraps an arbitrary error as ErrApp unless it already carries one of
// the typed kinds, in which case it is returned unchanged. The workflow uses
// this at its rollback boundary so NotFound/Conflict survive while everything
// else collapses to the generic kind.
func From(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrTooManyRequests),
		errors.Is(err, ErrApp):
		return err
	}
	return fmt.Errorf("%w: %v", ErrApp, err)
}
