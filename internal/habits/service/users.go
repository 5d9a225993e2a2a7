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

	"habitd/internal/habits/apperr"
	"habitd/internal/habits/model"
	"habitd/internal/habits/storage"

	"github.com/google/uuid"
)

// Users covers registration, the one write the habit surfaces need from the
// users table. Credentials and sessions live with a collaborator; a user row
// here is just an id to own habits with.
type Users struct {
	st    *storage.Storage
	users *storage.UserRepository
}

// NewUsers wires the user service.
func NewUsers(st *storage.Storage, users *storage.UserRepository) *Users {
	return &Users{st: st, users: users}
}

// Register creates a user with a fresh id. A blank name is BadRequest.
func (s *Users) Register(ctx context.Context, post model.PostUser) (*model.User, error) {
	if post.Name == "" {
		return nil, apperr.Wrap(apperr.ErrBadRequest, "user name is required")
	}
	return s.users.Insert(ctx, s.st.DB(), model.User{
		ID:   uuid.New(),
		Name: post.Name,
	})
}
