// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package govclient

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/govhub/govclient/types/events"
)

// DefaultHistoryInterval is how often the history watcher re-fetches when it
// isn't poked. Matches the mobile app's polling interval.
const DefaultHistoryInterval = 5 * time.Minute

// HistoryWatcher periodically refreshes the ticket history and delivers the
// result as events.HistorySync through the client's event handlers.
//
// Refreshes overlap freely: every trigger starts its own fetch, and a
// generation counter makes delivery last-write-wins, so a slow older fetch
// can never overwrite the result of a newer one.
type HistoryWatcher struct {
	cli      *Client
	interval time.Duration

	poke chan struct{}
	stop context.CancelFunc

	started   atomic.Uint64
	delivered uint64
	deliverMu sync.Mutex
}

// WatchHistory starts a background refresher for the ticket history. It
// fetches immediately, then on every interval tick and every Poke. Pass zero
// to use DefaultHistoryInterval. Stop the watcher with Stop; it also stops
// when ctx is cancelled.
func (cli *Client) WatchHistory(ctx context.Context, interval time.Duration) *HistoryWatcher {
	if interval <= 0 {
		interval = DefaultHistoryInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	watcher := &HistoryWatcher{
		cli:      cli,
		interval: interval,
		poke:     make(chan struct{}, 1),
		stop:     cancel,
	}
	go watcher.loop(ctx)
	return watcher
}

// Poke triggers an immediate refresh, the equivalent of the screen regaining
// focus. Pokes while a refresh trigger is already pending are coalesced.
func (hw *HistoryWatcher) Poke() {
	select {
	case hw.poke <- struct{}{}:
	default:
	}
}

// Stop shuts the watcher down. Idempotent; in-flight fetches are discarded
// rather than delivered.
func (hw *HistoryWatcher) Stop() {
	hw.stop()
}

func (hw *HistoryWatcher) loop(ctx context.Context) {
	defer hw.cli.Log.Debugf("History watcher loop exiting")
	ticker := time.NewTicker(hw.interval)
	defer ticker.Stop()
	hw.refresh(ctx)
	for {
		select {
		case <-ticker.C:
			hw.refresh(ctx)
		case <-hw.poke:
			hw.refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// refresh starts one fetch generation. The fetch itself runs in its own
// goroutine so a slow backend can't delay the next trigger.
func (hw *HistoryWatcher) refresh(ctx context.Context) {
	generation := hw.started.Add(1)
	go func() {
		tickets, err := hw.cli.GetTicketHistory(ctx)
		if ctx.Err() != nil {
			// The watcher is gone, drop the result instead of updating
			// whatever replaced the view.
			return
		}
		hw.deliverMu.Lock()
		defer hw.deliverMu.Unlock()
		if generation <= hw.delivered {
			hw.cli.Log.Debugf("Dropping stale history refresh (generation %d <= %d)", generation, hw.delivered)
			return
		}
		hw.delivered = generation
		hw.cli.dispatchEvent(&events.HistorySync{Tickets: tickets, Err: err})
	}()
}
