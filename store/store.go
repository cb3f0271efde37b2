// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package store contains the persisted session state and the interface its
// storage backends implement.
package store

import (
	"context"

	"github.com/govhub/govclient/types"
	gvLog "github.com/govhub/govclient/util/log"
)

// SessionContainer is a storage backend for sessions. The customer snapshot
// and the bearer token always travel together through this interface so that
// no backend can persist one without the other.
type SessionContainer interface {
	// GetSession returns the stored session, or (nil, nil) when there is none.
	// Backends must treat unreadable or corrupt stored data as "no session"
	// rather than returning an error.
	GetSession(ctx context.Context) (*Session, error)
	// PutSession stores the customer snapshot and token in a single write.
	PutSession(ctx context.Context, session *Session) error
	// DeleteSession removes the stored session. Deleting an absent session is
	// not an error.
	DeleteSession(ctx context.Context, session *Session) error
}

// Session is the locally cached (customer, bearer token) pair representing an
// authenticated customer. The zero session (nil User, empty Token) is the
// anonymous state.
type Session struct {
	Log gvLog.Logger

	User  *types.Customer
	Token string

	Container SessionContainer
}

// Authenticated reports whether the session holds a complete login.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil && s.Token != ""
}

// Save persists the session through its container.
func (s *Session) Save(ctx context.Context) error {
	return s.Container.PutSession(ctx, s)
}

// Delete removes the persisted session and resets the in-memory state to
// anonymous. Safe to call when nothing is stored.
func (s *Session) Delete(ctx context.Context) error {
	if err := s.Container.DeleteSession(ctx, s); err != nil {
		return err
	}
	s.User = nil
	s.Token = ""
	return nil
}
