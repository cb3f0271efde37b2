// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package govclient

// AddEventHandler registers a new function to receive all events emitted by
// this client. The returned integer is the event handler ID, which can be
// passed to RemoveEventHandler to remove it.
//
// Handlers are called synchronously from the operation that produced the
// event, so they should not block.
func (cli *Client) AddEventHandler(handler EventHandler) uint32 {
	cli.eventHandlersLock.Lock()
	defer cli.eventHandlersLock.Unlock()
	cli.nextHandlerID++
	cli.eventHandlers = append(cli.eventHandlers, wrappedEventHandler{handler, cli.nextHandlerID})
	return cli.nextHandlerID
}

// RemoveEventHandler removes a previously registered event handler function.
// It returns true if the handler was found and removed.
func (cli *Client) RemoveEventHandler(id uint32) bool {
	cli.eventHandlersLock.Lock()
	defer cli.eventHandlersLock.Unlock()
	for index := range cli.eventHandlers {
		if cli.eventHandlers[index].id == id {
			if index == 0 {
				cli.eventHandlers[0].fn = nil
				cli.eventHandlers = cli.eventHandlers[1:]
				return true
			} else if index < len(cli.eventHandlers)-1 {
				copy(cli.eventHandlers[index:], cli.eventHandlers[index+1:])
			}
			cli.eventHandlers[len(cli.eventHandlers)-1].fn = nil
			cli.eventHandlers = cli.eventHandlers[:len(cli.eventHandlers)-1]
			return true
		}
	}
	return false
}

// RemoveEventHandlers removes all event handlers from the client.
func (cli *Client) RemoveEventHandlers() {
	cli.eventHandlersLock.Lock()
	defer cli.eventHandlersLock.Unlock()
	cli.eventHandlers = make([]wrappedEventHandler, 0, 1)
}

func (cli *Client) dispatchEvent(evt any) {
	cli.eventHandlersLock.RLock()
	defer func() {
		cli.eventHandlersLock.RUnlock()
		if err := recover(); err != nil {
			cli.Log.Errorf("Event handler panicked while handling a %T: %v", evt, err)
		}
	}()
	for _, handler := range cli.eventHandlers {
		handler.fn(evt)
	}
}
