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

// Package storage is the relational collaborator behind the repositories:
// a sqlite database (pure-Go driver, modernc.org/sqlite) holding the Users,
// Habits and HabitLogs tables.
//
// Repositories never open their own transactions. Every repository method
// takes a Querier as its first data argument — either the root *sql.DB for
// single-statement calls or an open *sql.Tx — so the workflow's ownership of
// atomicity is visible at each call site instead of hiding in ambient state.
//
// Reads report absence as a nil entity with a nil error; errors are reserved
// for real failures. Updates and deletes report a rows-affected boolean.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods accept it so the same code runs standalone or inside a
// workflow-owned transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// schema is bootstrapped on Open. The UNIQUE(habit_id, start_date) index is a
// deliberate hardening of the duplicate-log pre-check: the workflow still
// checks first and reports a conflict without writing, but a racing insert
// that slips past the check is stopped here instead of corrupting the streak.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS habits (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(id),
	name         TEXT NOT NULL,
	streak_count INTEGER NOT NULL DEFAULT 0 CHECK (streak_count >= 0)
);
CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id);

CREATE TABLE IF NOT EXISTS habit_logs (
	id          TEXT PRIMARY KEY,
	habit_id    TEXT NOT NULL REFERENCES habits(id),
	start_date  TEXT NOT NULL,
	logged      INTEGER NOT NULL,
	length_days INTEGER NOT NULL CHECK (length_days BETWEEN 1 AND 30),
	UNIQUE (habit_id, start_date)
);
CREATE INDEX IF NOT EXISTS idx_habit_logs_habit_date ON habit_logs(habit_id, start_date DESC);
`

// Storage owns the database handle and hands out transactions.
type Storage struct {
	path string
	db   *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and bootstraps
// the schema. Use ":memory:" for tests.
func Open(path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows one writer; a single pooled connection avoids SQLITE_BUSY
	// between the workflow's transaction and concurrent reads.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &Storage{path: path, db: db}, nil
}

// DB exposes the root handle as a Querier for single-statement repository
// calls that do not need a transaction.
func (s *Storage) DB() Querier { return s.db }

// BeginTx starts a transaction for a workflow invocation. The caller must
// finish it with exactly one Commit or Rollback.
func (s *Storage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// IsUniqueViolation reports whether err came from the UNIQUE(habit_id,
// start_date) index. The modernc driver surfaces constraint failures as
// string-typed errors, so this is a substring check.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
