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
	"time"

	"github.com/govhub/govclient/types"
	"github.com/govhub/govclient/types/events"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// RestoreSession loads the persisted session, if any, at process start.
// It returns the restored customer, or nil when the client stays anonymous.
// Storage problems downgrade to anonymous with a warning log; they are never
// fatal, so a damaged store sends the user to the login flow instead of
// crashing the host.
func (cli *Client) RestoreSession(ctx context.Context) (*types.Customer, error) {
	session, err := cli.Store.Container.GetSession(ctx)
	if err != nil {
		cli.Log.Warnf("Failed to restore session, continuing as anonymous: %v", err)
		return nil, nil
	}
	if session == nil || !session.Authenticated() {
		return nil, nil
	}
	cli.sessionLock.Lock()
	cli.Store.User = session.User
	cli.Store.Token = session.Token
	cli.sessionLock.Unlock()
	cli.Log.Infof("Restored session for %s", session.User.EmailAddress)
	return session.User, nil
}

// Login authenticates with the backend and establishes a session.
//
// The login endpoint only returns a token, so the full profile is fetched
// with a second lookup by email before anything is persisted. The customer
// snapshot and token are stored through a single container write and the
// bearer token is installed for all subsequent requests. On any failure the
// previous session (if one existed) is left untouched.
func (cli *Client) Login(ctx context.Context, email, password string) (*types.Customer, error) {
	var tokenResp loginResponse
	err := cli.sendRequest(ctx, "POST", "/customers/login", &loginRequest{Email: email, Password: password}, &tokenResp)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if tokenResp.Token == "" {
		return nil, fmt.Errorf("login failed: %w", ErrBadResponse)
	}
	var user types.Customer
	err = cli.sendRequest(ctx, "GET", "/customers/email/"+url.PathEscape(email), nil, &user)
	if err != nil {
		return nil, fmt.Errorf("profile lookup after login failed: %w", err)
	}
	if user.ID == "" {
		return nil, ErrNoIDInLogin
	}

	cli.sessionLock.Lock()
	prevUser, prevToken := cli.Store.User, cli.Store.Token
	cli.Store.User = &user
	cli.Store.Token = tokenResp.Token
	if err = cli.Store.Save(ctx); err != nil {
		cli.Store.User, cli.Store.Token = prevUser, prevToken
		cli.sessionLock.Unlock()
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	cli.sessionLock.Unlock()

	cli.Log.Infof("Logged in as %s", user.EmailAddress)
	cli.dispatchEvent(&events.LoggedIn{User: &user})
	return &user, nil
}

// Logout clears the persisted session and the bearer token. It is idempotent:
// logging out an anonymous client is a no-op and emits no event.
func (cli *Client) Logout(ctx context.Context) error {
	cli.sessionLock.Lock()
	wasLoggedIn := cli.Store.Authenticated()
	err := cli.Store.Delete(ctx)
	cli.sessionLock.Unlock()
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if wasLoggedIn {
		cli.Log.Infof("Logged out")
		cli.dispatchEvent(&events.LoggedOut{})
	}
	return nil
}

// Register creates a new customer account. The profile is validated locally
// first; nothing is sent if validation fails. Registration does not log the
// new customer in, the caller still has to call Login.
func (cli *Client) Register(ctx context.Context, profile types.Customer) error {
	if err := ValidateRegistration(&profile, time.Now()); err != nil {
		return err
	}
	err := cli.sendRequest(ctx, "POST", "/customers", &profile, nil)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	cli.Log.Infof("Registered new customer %s", profile.EmailAddress)
	cli.dispatchEvent(&events.Registered{EmailAddress: profile.EmailAddress})
	return nil
}
