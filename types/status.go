// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package types

import (
	"encoding/json"
	"fmt"
)

// TicketStatus is the workflow state of a ticket. The client never advances
// the workflow itself, it only reads the status to decide what the customer
// may still do with the ticket.
type TicketStatus string

const (
	StatusPending    TicketStatus = "Pending"
	StatusAccepted   TicketStatus = "Accepted"
	StatusInProgress TicketStatus = "In Progress"
	StatusSolved     TicketStatus = "Solved"
)

// ParseTicketStatus maps a wire status label to its canonical value. Older
// backend deployments label accepted tickets "Approved"; both spellings fold
// into StatusAccepted.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	switch raw {
	case "", string(StatusPending):
		return StatusPending, nil
	case "Approved", string(StatusAccepted):
		return StatusAccepted, nil
	case string(StatusInProgress):
		return StatusInProgress, nil
	case string(StatusSolved):
		return StatusSolved, nil
	default:
		return "", fmt.Errorf("unknown ticket status %q", raw)
	}
}

func (ts *TicketStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTicketStatus(raw)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

func (ts TicketStatus) String() string {
	return string(ts)
}
