// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package govclient

import (
	"errors"
	"fmt"
)

// Miscellaneous errors
var (
	ErrNotLoggedIn  = errors.New("the store doesn't contain a session")
	ErrBadResponse  = errors.New("unexpected response payload from server")
	ErrNoIDInLogin  = errors.New("profile lookup after login returned a customer without an ID")
	ErrInvalidProxy = errors.New("invalid proxy address")
)

// Errors that ticket operations can return before any request is issued
var (
	ErrTicketSolved  = errors.New("solved appointments are read-only")
	ErrTicketLocked  = errors.New("accepted or in-progress appointments can't be deleted")
	ErrDeleteConfirm = errors.New("deleting an appointment requires confirmation")
)

// APIError is a normalized network/backend failure: a non-2xx response or an
// unreachable server. The message is the server's own when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (err *APIError) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("server returned %s (HTTP %d)", err.Message, err.StatusCode)
	}
	return fmt.Sprintf("request failed with HTTP %d", err.StatusCode)
}

// ValidationError is a local form validation failure. It blocks submission:
// nothing is sent to the server for an operation that fails validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (err *ValidationError) Error() string {
	return err.Reason
}

// IsValidationError reports whether the error (or anything it wraps) is a
// local validation failure rather than a backend one.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
