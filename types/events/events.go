// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package events contains the events emitted by the govclient Client.
package events

import (
	"github.com/govhub/govclient/types"
)

// LoggedIn is emitted after a successful login, once the session has been
// persisted and the bearer token is installed on the HTTP layer. Hosts should
// switch from the auth flow to the app flow when they see this.
type LoggedIn struct {
	User *types.Customer
}

// LoggedOut is emitted when the session has been cleared. It is only emitted
// for an actual state change: calling Logout on an anonymous client is a no-op
// and produces no event. Hosts should drop all app-flow state immediately,
// including screens still waiting on in-flight requests.
type LoggedOut struct{}

// Registered is emitted after a successful registration. Registration does not
// establish a session; the new customer still has to log in.
type Registered struct {
	EmailAddress string
}

// HistorySync is emitted by the history watcher after every refresh attempt,
// whether triggered by the interval or by a Poke. Exactly one of Tickets and
// Err is meaningful. Tickets is already filtered to the session customer and
// sorted by appointment date descending.
type HistorySync struct {
	Tickets []types.Ticket
	Err     error
}
