// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package sqlstore contains a PostgreSQL-backed implementation of the
// SessionContainer interface in the store package.
//
// Unlike the single-slot secure store on a phone, the SQL container can hold
// sessions for several customer accounts at once; GetSession returns the most
// recently saved one.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/govhub/govclient/store"
	"github.com/govhub/govclient/types"
	gvLog "github.com/govhub/govclient/util/log"
)

// Container is a wrapper for a pgx pool that can store sessions.
type Container struct {
	db  *pgxpool.Pool
	log gvLog.Logger
}

var _ store.SessionContainer = (*Container)(nil)

// New connects to the given PostgreSQL database and upgrades the schema to
// the latest version.
func New(ctx context.Context, dsn string, log gvLog.Logger) (*Container, error) {
	if log == nil {
		log = gvLog.Noop
	}
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	container := NewWithPool(db, log)
	if err = container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade database: %w", err)
	}
	return container, nil
}

// NewWithPool wraps an existing pgx pool in a Container. The caller is
// expected to run Upgrade itself if it didn't go through New.
func NewWithPool(db *pgxpool.Pool, log gvLog.Logger) *Container {
	if log == nil {
		log = gvLog.Noop
	}
	return &Container{db: db, log: log}
}

// Close closes the underlying pool.
func (c *Container) Close() {
	c.db.Close()
}

const (
	getLatestSessionQuery = `
		SELECT customer_id, customer_json, token FROM govclient_session ORDER BY updated_at DESC LIMIT 1
	`
	getSessionForCustomerQuery = `
		SELECT customer_id, customer_json, token FROM govclient_session WHERE customer_id=$1
	`
	getAllSessionsQuery = `
		SELECT customer_id, customer_json, token FROM govclient_session ORDER BY updated_at DESC
	`
	putSessionQuery = `
		INSERT INTO govclient_session (customer_id, customer_json, token, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (customer_id) DO UPDATE SET customer_json=excluded.customer_json, token=excluded.token, updated_at=excluded.updated_at
	`
	deleteSessionQuery = `DELETE FROM govclient_session WHERE customer_id=$1`
)

func (c *Container) scanSession(row pgx.Row) (*store.Session, error) {
	var customerID, token string
	var customerJSON []byte
	err := row.Scan(&customerID, &customerJSON, &token)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var user types.Customer
	if err = json.Unmarshal(customerJSON, &user); err != nil {
		// A row we can't parse is treated the same as no session: the user
		// can log in again, which overwrites it.
		c.log.Warnf("Ignoring unparseable session row for %s: %v", customerID, err)
		return nil, nil
	}
	return &store.Session{
		Log:       c.log,
		User:      &user,
		Token:     token,
		Container: c,
	}, nil
}

// GetSession returns the most recently saved session, or (nil, nil) if the
// table is empty.
func (c *Container) GetSession(ctx context.Context) (*store.Session, error) {
	return c.scanSession(c.db.QueryRow(ctx, getLatestSessionQuery))
}

// GetSessionForCustomer returns the stored session for a specific customer ID.
func (c *Container) GetSessionForCustomer(ctx context.Context, customerID string) (*store.Session, error) {
	return c.scanSession(c.db.QueryRow(ctx, getSessionForCustomerQuery, customerID))
}

// GetAllSessions returns every stored session, most recently saved first.
func (c *Container) GetAllSessions(ctx context.Context) ([]*store.Session, error) {
	rows, err := c.db.Query(ctx, getAllSessionsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []*store.Session
	for rows.Next() {
		session, err := c.scanSession(rows)
		if err != nil {
			return nil, err
		}
		if session != nil {
			sessions = append(sessions, session)
		}
	}
	return sessions, rows.Err()
}

// PutSession stores the customer snapshot and token in a single upsert.
func (c *Container) PutSession(ctx context.Context, session *store.Session) error {
	if session.User == nil || session.User.ID == "" {
		return fmt.Errorf("can't store session without a customer snapshot")
	}
	customerJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("failed to marshal customer: %w", err)
	}
	_, err = c.db.Exec(ctx, putSessionQuery, session.User.ID, customerJSON, session.Token)
	return err
}

// DeleteSession removes the stored session for the session's customer.
// Deleting a session that was never stored is not an error.
func (c *Container) DeleteSession(ctx context.Context, session *store.Session) error {
	if session.User == nil {
		return nil
	}
	_, err := c.db.Exec(ctx, deleteSessionQuery, session.User.ID)
	return err
}
