// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"sync"

	"github.com/govhub/govclient/types"
)

// MemoryContainer is a SessionContainer that keeps the session in memory.
// Mainly useful for tests and throwaway clients.
type MemoryContainer struct {
	lock  sync.Mutex
	user  *types.Customer
	token string
	has   bool
}

var _ SessionContainer = (*MemoryContainer)(nil)

func NewMemoryContainer() *MemoryContainer {
	return &MemoryContainer{}
}

func (mc *MemoryContainer) GetSession(_ context.Context) (*Session, error) {
	mc.lock.Lock()
	defer mc.lock.Unlock()
	if !mc.has {
		return nil, nil
	}
	user := *mc.user
	return &Session{User: &user, Token: mc.token, Container: mc}, nil
}

func (mc *MemoryContainer) PutSession(_ context.Context, session *Session) error {
	mc.lock.Lock()
	defer mc.lock.Unlock()
	user := *session.User
	mc.user = &user
	mc.token = session.Token
	mc.has = true
	return nil
}

func (mc *MemoryContainer) DeleteSession(_ context.Context, _ *Session) error {
	mc.lock.Lock()
	defer mc.lock.Unlock()
	mc.user = nil
	mc.token = ""
	mc.has = false
	return nil
}
