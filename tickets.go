// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package govclient

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/govhub/govclient/types"
)

// TicketDraft is the customer-entered part of a new appointment request. The
// customer and department IDs come from the session and the dashboard
// selection, never from the form itself.
type TicketDraft struct {
	IssueDescription string
	Notes            string
	AppointmentDate  time.Time
	// AppointmentTime is the HH:MM:SS time-of-day for the appointment.
	AppointmentTime string
}

// appointmentInstant combines the appointment date and time-of-day into one
// instant for the strict-future check. An unparseable time-of-day leaves just
// the date, so the check falls back to whole-day granularity.
func (draft *TicketDraft) appointmentInstant() time.Time {
	day := draft.AppointmentDate
	parsed, err := time.Parse("15:04:05", draft.AppointmentTime)
	if err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, day.Location())
}

// TicketEdit is the set of fields a customer may change on an existing
// appointment.
type TicketEdit struct {
	IssueDescription string
	Notes            string
	AppointmentDate  time.Time
}

// CreateTicket validates and submits a new appointment request against the
// given department. When the department publishes appointment reasons, the
// issue description must be one of them; departments with no published
// reasons accept free text. The appointment instant must be strictly in the
// future at submission time. Requires a session.
func (cli *Client) CreateTicket(ctx context.Context, departmentID string, draft TicketDraft) (*types.Ticket, error) {
	user, _ := cli.snapshotSession()
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	dept, err := cli.GetDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if err = validateTicketDraft(&draft, dept, time.Now()); err != nil {
		return nil, err
	}
	payload := &types.Ticket{
		CustomerID:       user.ID,
		DepartmentID:     departmentID,
		IssueDescription: draft.IssueDescription,
		Notes:            draft.Notes,
		AppointmentDate:  types.Timestamp{Time: draft.AppointmentDate},
		AppointmentTime:  draft.AppointmentTime,
		Status:           types.StatusPending,
	}
	var created types.Ticket
	if err = cli.sendRequest(ctx, "POST", "/tickets", payload, &created); err != nil {
		return nil, fmt.Errorf("failed to schedule appointment: %w", err)
	}
	cli.Log.Infof("Created ticket %s with %s", created.ID, dept.DepartmentName)
	return &created, nil
}

// GetTicket fetches one ticket by ID. Requires a session.
func (cli *Client) GetTicket(ctx context.Context, ticketID string) (*types.Ticket, error) {
	if !cli.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}
	var ticket types.Ticket
	err := cli.sendRequest(ctx, "GET", "/tickets/"+url.PathEscape(ticketID), nil, &ticket)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment: %w", err)
	}
	return &ticket, nil
}

// GetTicketHistory fetches the session customer's appointment history. The
// backend list endpoint isn't scoped, so the result is filtered to the
// current customer and sorted by appointment date descending; both are
// re-applied on every call.
func (cli *Client) GetTicketHistory(ctx context.Context) ([]types.Ticket, error) {
	user, _ := cli.snapshotSession()
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	var all []types.Ticket
	if err := cli.sendRequest(ctx, "GET", "/tickets", nil, &all); err != nil {
		return nil, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	mine := all[:0]
	for _, ticket := range all {
		if ticket.CustomerID == user.ID {
			mine = append(mine, ticket)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].AppointmentDate.After(mine[j].AppointmentDate.Time)
	})
	return mine, nil
}

// EditTicket applies customer edits to an existing appointment. The current
// status is checked first: a Solved ticket is read-only and the update is
// rejected without issuing the PUT. The appointment date is normalized to
// YYYY-MM-DD on the wire, which is what the backend expects on updates.
func (cli *Client) EditTicket(ctx context.Context, ticketID string, edit TicketEdit) (*types.Ticket, error) {
	ticket, err := cli.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !CanEditTicket(ticket.Status) {
		return nil, ErrTicketSolved
	}
	if err = validateTicketEdit(&edit, time.Now()); err != nil {
		return nil, err
	}
	date := types.Timestamp{Time: edit.AppointmentDate}
	payload := map[string]any{
		"customerID":       ticket.CustomerID,
		"departmentID":     ticket.DepartmentID,
		"issueDescription": edit.IssueDescription,
		"notes":            edit.Notes,
		"appointmentDate":  date.DateString(),
		"appointmentTime":  ticket.AppointmentTime,
		"status":           ticket.Status,
	}
	var updated types.Ticket
	if err = cli.sendRequest(ctx, "PUT", "/tickets/"+url.PathEscape(ticketID), payload, &updated); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return &updated, nil
}

// DeleteTicket cancels an appointment. Accepted and in-progress appointments
// can't be cancelled, and the check happens before the DELETE is issued. The
// confirm flag is the explicit user confirmation step; passing false returns
// ErrDeleteConfirm without touching the backend.
func (cli *Client) DeleteTicket(ctx context.Context, ticketID string, confirm bool) error {
	if !confirm {
		return ErrDeleteConfirm
	}
	ticket, err := cli.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !CanDeleteTicket(ticket.Status) {
		return ErrTicketLocked
	}
	if err = cli.sendRequest(ctx, "DELETE", "/tickets/"+url.PathEscape(ticketID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	cli.Log.Infof("Deleted ticket %s", ticketID)
	return nil
}

// AppointmentDetails is the read-only projection shown on the appointment
// view: a ticket joined with its department. Department is nil when the
// reference is missing or the lookup failed; the view degrades to a
// placeholder instead of failing entirely.
type AppointmentDetails struct {
	Ticket     *types.Ticket
	Department *types.Department
}

// DepartmentName returns the display name for the joined department, or a
// placeholder when it couldn't be resolved.
func (ad *AppointmentDetails) DepartmentName() string {
	if ad.Department == nil {
		return "Unavailable"
	}
	return ad.Department.DepartmentName
}

// GetAppointmentDetails fetches a ticket and joins its department name. A
// failed department lookup is logged and degrades to a nil Department; only
// the ticket fetch itself can fail the call.
func (cli *Client) GetAppointmentDetails(ctx context.Context, ticketID string) (*AppointmentDetails, error) {
	ticket, err := cli.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	details := &AppointmentDetails{Ticket: ticket}
	if ticket.DepartmentID != "" {
		dept, err := cli.GetDepartment(ctx, ticket.DepartmentID)
		if err != nil {
			cli.Log.Warnf("Failed to resolve department %s for ticket %s: %v", ticket.DepartmentID, ticketID, err)
		} else {
			details.Department = dept
		}
	}
	return details, nil
}
