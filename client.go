// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package govclient implements a client for the GovHub municipal appointment
// backend: customers register, log in, browse departments, schedule
// appointment tickets and track their status.
//
// The client is a cache over server-held records, never the source of truth.
// It keeps exactly one piece of durable state, the session (customer snapshot
// plus bearer token), persisted through the store package.
package govclient

import (
	"net/http"
	"sync"
	"time"

	"go.mau.fi/util/exsync"

	"github.com/govhub/govclient/store"
	"github.com/govhub/govclient/types"
	gvLog "github.com/govhub/govclient/util/log"
)

// EventHandler is a function that can handle events from the client.
type EventHandler func(evt any)

type wrappedEventHandler struct {
	fn EventHandler
	id uint32
}

// Flow tells a host which set of screens it should be presenting.
type Flow int

const (
	// FlowAuth is the unauthenticated flow: login and registration.
	FlowAuth Flow = iota
	// FlowApp is the authenticated flow: dashboard and ticket operations.
	FlowApp
)

// Client contains everything necessary to interact with the GovHub API.
type Client struct {
	Store *store.Session
	Log   gvLog.Logger

	// BaseURL is the API root, including the /api prefix.
	BaseURL string

	http *http.Client

	// sessionLock guards Store's user/token pair. Login, Logout and
	// RestoreSession are the only writers; everything else takes snapshots.
	sessionLock sync.RWMutex

	departmentCache *exsync.Map[string, *types.Department]

	eventHandlers     []wrappedEventHandler
	eventHandlersLock sync.RWMutex
	nextHandlerID     uint32
}

const defaultRequestTimeout = 30 * time.Second

// NewClient initializes a new GovHub client.
//
// The container must be set; it decides where the session is persisted. SQL
// and encrypted-file implementations are available in the store/sqlstore and
// store/filestore packages, and store.NewMemoryContainer works for throwaway
// clients.
//
// The logger can be nil, it will default to a no-op logger.
func NewClient(baseURL string, container store.SessionContainer, log gvLog.Logger) *Client {
	if log == nil {
		log = gvLog.Noop
	}
	return &Client{
		Store: &store.Session{
			Log:       log.Sub("Store"),
			Container: container,
		},
		Log:             log,
		BaseURL:         baseURL,
		http:            &http.Client{Timeout: defaultRequestTimeout},
		departmentCache: exsync.NewMapWithData(make(map[string]*types.Department)),
		eventHandlers:   make([]wrappedEventHandler, 0, 1),
	}
}

// IsLoggedIn reports whether the client currently holds a complete session.
func (cli *Client) IsLoggedIn() bool {
	cli.sessionLock.RLock()
	defer cli.sessionLock.RUnlock()
	return cli.Store.Authenticated()
}

// Flow is the routing policy: it is a pure function of session presence.
// Hosts should re-evaluate it whenever they see a LoggedIn or LoggedOut
// event and switch screen sets unconditionally.
func (cli *Client) Flow() Flow {
	if cli.IsLoggedIn() {
		return FlowApp
	}
	return FlowAuth
}

// snapshotSession returns the current customer snapshot and token without
// holding the session lock afterwards.
func (cli *Client) snapshotSession() (*types.Customer, string) {
	cli.sessionLock.RLock()
	defer cli.sessionLock.RUnlock()
	return cli.Store.User, cli.Store.Token
}
