// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package govclient

import (
	"regexp"
	"strings"
	"time"

	"github.com/govhub/govclient/types"
)

var (
	nicRegex   = regexp.MustCompile(`^\d{10}$`)
	phoneRegex = regexp.MustCompile(`^\d{10}$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const minimumAge = 18

// AgeAt computes a calendar-aware age: the years between dateOfBirth and at,
// minus one if the birthday hasn't occurred yet in at's year. The 18th
// birthday itself therefore passes the age gate, the day before does not.
func AgeAt(dateOfBirth, at time.Time) int {
	age := at.Year() - dateOfBirth.Year()
	if at.Month() < dateOfBirth.Month() ||
		(at.Month() == dateOfBirth.Month() && at.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

// ValidateRegistration checks a registration payload against the backend's
// account rules. It returns a *ValidationError naming the offending field, or
// nil when the profile may be submitted.
func ValidateRegistration(profile *types.Customer, now time.Time) error {
	switch {
	case profile.NIC == "", profile.FirstName == "", profile.LastName == "",
		profile.DateOfBirth.IsZero(), profile.Gender == "", profile.PhoneNumber == "",
		profile.EmailAddress == "", profile.Address == "", profile.Password == "":
		return &ValidationError{Field: "all", Reason: "All fields are required."}
	case !nicRegex.MatchString(profile.NIC):
		return &ValidationError{Field: "NIC", Reason: "NIC must be 10 digits."}
	case !emailRegex.MatchString(profile.EmailAddress):
		return &ValidationError{Field: "emailAddress", Reason: "Invalid email address."}
	case !phoneRegex.MatchString(profile.PhoneNumber):
		return &ValidationError{Field: "phoneNumber", Reason: "Phone number must be 10 digits."}
	case len(profile.Password) < 6:
		return &ValidationError{Field: "password", Reason: "Password must be at least 6 characters long."}
	case AgeAt(profile.DateOfBirth.Time, now) < minimumAge:
		return &ValidationError{Field: "dateOfBirth", Reason: "You must be at least 18 years old to register."}
	}
	return nil
}

// Customer-side ticket actions and the statuses they're allowed from. Status
// changes themselves are staff-side; the client only guards its own writes.
var ticketActions = map[string][]types.TicketStatus{
	"edit":   {types.StatusPending, types.StatusAccepted, types.StatusInProgress},
	"delete": {types.StatusPending, types.StatusSolved},
}

func allowedAction(action string, status types.TicketStatus) bool {
	for _, allowed := range ticketActions[action] {
		if allowed == status {
			return true
		}
	}
	return false
}

// CanEditTicket reports whether a ticket in the given status still accepts
// customer edits. Solved tickets are read-only.
func CanEditTicket(status types.TicketStatus) bool {
	return allowedAction("edit", status)
}

// CanDeleteTicket reports whether a ticket in the given status may be
// cancelled by the customer. Accepted and in-progress appointments may not.
func CanDeleteTicket(status types.TicketStatus) bool {
	return allowedAction("delete", status)
}

// validateTicketDraft checks a new ticket before it is submitted.
func validateTicketDraft(draft *TicketDraft, dept *types.Department, now time.Time) error {
	if strings.TrimSpace(draft.IssueDescription) == "" {
		return &ValidationError{Field: "issueDescription", Reason: "Please select an issue description."}
	}
	if draft.AppointmentTime == "" {
		return &ValidationError{Field: "appointmentTime", Reason: "Please select an appointment time."}
	}
	if !draft.appointmentInstant().After(now) {
		return &ValidationError{Field: "appointmentDate", Reason: "Appointment date must be in the future."}
	}
	if dept != nil && !dept.AllowsReason(draft.IssueDescription) {
		return &ValidationError{Field: "issueDescription", Reason: "Issue description isn't one of the department's appointment reasons."}
	}
	return nil
}

// validateTicketEdit checks an edit to an existing ticket.
func validateTicketEdit(edit *TicketEdit, now time.Time) error {
	if strings.TrimSpace(edit.IssueDescription) == "" {
		return &ValidationError{Field: "issueDescription", Reason: "Issue description is required"}
	}
	if strings.TrimSpace(edit.Notes) == "" {
		return &ValidationError{Field: "notes", Reason: "Notes are required"}
	}
	if !edit.AppointmentDate.After(now) {
		return &ValidationError{Field: "appointmentDate", Reason: "Appointment date must be in the future"}
	}
	return nil
}
