// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package types contains the entity schemas used by the GovHub backend.
//
// The backend returns loosely shaped JSON; everything the client consumes is
// parsed into these structs at the API boundary.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Customer is a registered citizen account. The password field is only ever
// populated on the registration payload, it is never returned by the server.
type Customer struct {
	ID           string    `json:"_id,omitempty"`
	NIC          string    `json:"NIC"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	DateOfBirth  Timestamp `json:"dateOfBirth"`
	Gender       string    `json:"gender"`
	PhoneNumber  string    `json:"phoneNumber"`
	EmailAddress string    `json:"emailAddress"`
	Address      string    `json:"address"`
	Password     string    `json:"password,omitempty"`
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Department is a municipal service unit. Departments are read-only reference
// data from the client's perspective.
type Department struct {
	ID                 string   `json:"_id"`
	DepartmentName     string   `json:"departmentName"`
	OperatingHours     string   `json:"operatingHours"`
	AppointmentReasons []string `json:"appointmentReasons"`
}

// AllowsReason reports whether the given issue description is permitted for
// this department. Departments that publish no reason list accept free text.
func (d *Department) AllowsReason(reason string) bool {
	if len(d.AppointmentReasons) == 0 {
		return true
	}
	for _, allowed := range d.AppointmentReasons {
		if allowed == reason {
			return true
		}
	}
	return false
}

// Ticket is a customer-submitted appointment request against a department.
// Status, StaffID and Feedback are only ever mutated by the staff side.
type Ticket struct {
	ID               string       `json:"_id,omitempty"`
	CustomerID       string       `json:"customerID"`
	DepartmentID     string       `json:"departmentID"`
	IssueDescription string       `json:"issueDescription"`
	Notes            string       `json:"notes,omitempty"`
	AppointmentDate  Timestamp    `json:"appointmentDate"`
	AppointmentTime  string       `json:"appointmentTime"`
	Status           TicketStatus `json:"status"`
	StaffID          string       `json:"staffID,omitempty"`
	Feedback         string       `json:"feedback,omitempty"`
}

// Timestamp is a time.Time that tolerates the backend's inconsistent date
// encodings: full RFC 3339 timestamps, timestamps without a zone, and bare
// YYYY-MM-DD dates all parse. It marshals as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// DateString returns the date part in the YYYY-MM-DD form the backend expects
// on ticket updates.
func (t Timestamp) DateString() string {
	return t.Format("2006-01-02")
}
