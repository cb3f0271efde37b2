// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package govclient

import (
	"testing"
	"time"

	"github.com/govhub/govclient/types"
)

func validProfile() types.Customer {
	return types.Customer{
		NIC:          "9012345678",
		FirstName:    "Nimal",
		LastName:     "Perera",
		DateOfBirth:  types.Timestamp{Time: time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC)},
		Gender:       "male",
		PhoneNumber:  "0771234567",
		EmailAddress: "nimal@example.com",
		Address:      "12 Lake Road, Colombo",
		Password:     "hunter66",
	}
}

func TestAgeGateBoundary(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	for _, test := range []struct {
		name        string
		dateOfBirth time.Time
		wantOK      bool
	}{
		{"18 years minus a day", time.Date(2007, time.June, 16, 0, 0, 0, 0, time.UTC), false},
		{"exactly 18 years", time.Date(2007, time.June, 15, 0, 0, 0, 0, time.UTC), true},
		{"18 years plus a day", time.Date(2007, time.June, 14, 0, 0, 0, 0, time.UTC), true},
		{"well over 18", time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), true},
		{"toddler", time.Date(2023, time.March, 3, 0, 0, 0, 0, time.UTC), false},
	} {
		profile := validProfile()
		profile.DateOfBirth = types.Timestamp{Time: test.dateOfBirth}
		err := ValidateRegistration(&profile, now)
		if test.wantOK && err != nil {
			t.Errorf("%s: ValidateRegistration returned %v, want nil", test.name, err)
		} else if !test.wantOK && err == nil {
			t.Errorf("%s: ValidateRegistration accepted an underage profile", test.name)
		}
	}
}

func TestAgeAtCalendarAware(t *testing.T) {
	// Leap-day birthday: not 18 until March 1 in a non-leap year.
	dob := time.Date(2008, time.February, 29, 0, 0, 0, 0, time.UTC)
	if age := AgeAt(dob, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)); age != 17 {
		t.Errorf("AgeAt on Feb 28 = %d, want 17", age)
	}
	if age := AgeAt(dob, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)); age != 18 {
		t.Errorf("AgeAt on Mar 1 = %d, want 18", age)
	}
}

func TestValidateRegistrationFields(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	for _, test := range []struct {
		name      string
		mutate    func(*types.Customer)
		wantField string
	}{
		{"valid", func(*types.Customer) {}, ""},
		{"missing field", func(c *types.Customer) { c.Address = "" }, "all"},
		{"short NIC", func(c *types.Customer) { c.NIC = "90123" }, "NIC"},
		{"NIC with letters", func(c *types.Customer) { c.NIC = "90123V5678" }, "NIC"},
		{"bad email", func(c *types.Customer) { c.EmailAddress = "nimal@nowhere" }, "emailAddress"},
		{"email with spaces", func(c *types.Customer) { c.EmailAddress = "ni mal@example.com" }, "emailAddress"},
		{"short phone", func(c *types.Customer) { c.PhoneNumber = "07712" }, "phoneNumber"},
		{"long phone", func(c *types.Customer) { c.PhoneNumber = "07712345678" }, "phoneNumber"},
		{"short password", func(c *types.Customer) { c.Password = "12345" }, "password"},
	} {
		profile := validProfile()
		test.mutate(&profile)
		err := ValidateRegistration(&profile, now)
		if test.wantField == "" {
			if err != nil {
				t.Errorf("%s: got error %v, want nil", test.name, err)
			}
			continue
		}
		validationErr, ok := err.(*ValidationError)
		if !ok {
			t.Errorf("%s: got %T (%v), want *ValidationError", test.name, err, err)
			continue
		}
		if validationErr.Field != test.wantField {
			t.Errorf("%s: flagged field %q, want %q", test.name, validationErr.Field, test.wantField)
		}
	}
}

func TestTicketActionGuards(t *testing.T) {
	for _, test := range []struct {
		status    types.TicketStatus
		canEdit   bool
		canDelete bool
	}{
		{types.StatusPending, true, true},
		{types.StatusAccepted, true, false},
		{types.StatusInProgress, true, false},
		{types.StatusSolved, false, true},
	} {
		if got := CanEditTicket(test.status); got != test.canEdit {
			t.Errorf("CanEditTicket(%s) = %v, want %v", test.status, got, test.canEdit)
		}
		if got := CanDeleteTicket(test.status); got != test.canDelete {
			t.Errorf("CanDeleteTicket(%s) = %v, want %v", test.status, got, test.canDelete)
		}
	}
}

func TestTicketDraftStrictFuture(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	day := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	for _, test := range []struct {
		name   string
		time   string
		wantOK bool
	}{
		{"one second in the future", "10:30:01", true},
		{"exactly now", "10:30:00", false},
		{"in the past", "09:00:00", false},
	} {
		draft := &TicketDraft{
			IssueDescription: "Garbage collection missed",
			AppointmentDate:  day,
			AppointmentTime:  test.time,
		}
		err := validateTicketDraft(draft, nil, now)
		if test.wantOK && err != nil {
			t.Errorf("%s: got error %v, want nil", test.name, err)
		} else if !test.wantOK && err == nil {
			t.Errorf("%s: draft accepted, want rejection", test.name)
		}
	}
}

func TestTicketDraftReasonList(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	dept := &types.Department{
		ID:                 "dept-1",
		DepartmentName:     "Waste Management",
		AppointmentReasons: []string{"Garbage collection missed", "Bin replacement"},
	}
	freeText := &types.Department{ID: "dept-2", DepartmentName: "General Inquiries"}
	future := now.Add(24 * time.Hour)

	draft := &TicketDraft{IssueDescription: "Bin replacement", AppointmentDate: future, AppointmentTime: "09:00:00"}
	if err := validateTicketDraft(draft, dept, now); err != nil {
		t.Errorf("listed reason rejected: %v", err)
	}
	draft.IssueDescription = "Something else entirely"
	if err := validateTicketDraft(draft, dept, now); err == nil {
		t.Error("unlisted reason accepted for a department with a reason list")
	}
	if err := validateTicketDraft(draft, freeText, now); err != nil {
		t.Errorf("free text rejected for a department without a reason list: %v", err)
	}
}

func TestTicketEditValidation(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	for _, test := range []struct {
		name   string
		edit   TicketEdit
		wantOK bool
	}{
		{"valid", TicketEdit{"Broken streetlight", "Pole 12, Lake Road", future}, true},
		{"empty description", TicketEdit{"  ", "Pole 12", future}, false},
		{"empty notes", TicketEdit{"Broken streetlight", "", future}, false},
		{"past date", TicketEdit{"Broken streetlight", "Pole 12", now.Add(-time.Hour)}, false},
	} {
		err := validateTicketEdit(&test.edit, now)
		if test.wantOK && err != nil {
			t.Errorf("%s: got error %v, want nil", test.name, err)
		} else if !test.wantOK && err == nil {
			t.Errorf("%s: edit accepted, want rejection", test.name)
		}
	}
}
