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

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"habitd/internal/habits/model"

	"github.com/google/uuid"
)

// UserRepository covers the little this core needs from the Users table:
// existence checks on habit creation, and inserts for bootstrap/tests.
// Authentication lives with a collaborator.
type UserRepository struct{}

func NewUserRepository() *UserRepository { return &UserRepository{} }

// Exists reports whether the user row is present.
func (r *UserRepository) Exists(ctx context.Context, q Querier, userID uuid.UUID) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user %s: %w", userID, err)
	}
	return true, nil
}

// Insert writes a user row.
func (r *UserRepository) Insert(ctx context.Context, q Querier, u model.User) (*model.User, error) {
	_, err := q.ExecContext(ctx, `INSERT INTO users (id, name) VALUES (?, ?)`, u.ID.String(), u.Name)
	if err != nil {
		return nil, fmt.Errorf("insert user %s: %w", u.ID, err)
	}
	return &u, nil
}
