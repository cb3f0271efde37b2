// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package sqlstore

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type upgradeFunc func(context.Context, pgx.Tx, *Container) error

// Upgrades is a list of functions that will upgrade a database to the latest version.
//
// This may be of use if you want to manage the database fully manually, but in most cases you
// should just call Container.Upgrade to let the library handle everything.
var Upgrades = [...]upgradeFunc{upgradeV1}

func (c *Container) getVersion(ctx context.Context) (int, error) {
	_, err := c.db.Exec(ctx, "CREATE TABLE IF NOT EXISTS govclient_version (version INTEGER)")
	if err != nil {
		return -1, err
	}
	version := 0
	row := c.db.QueryRow(ctx, "SELECT version FROM govclient_version LIMIT 1")
	if err = row.Scan(&version); err != nil && err != pgx.ErrNoRows {
		return -1, err
	}
	return version, nil
}

func (c *Container) setVersion(ctx context.Context, tx pgx.Tx, version int) error {
	if _, err := tx.Exec(ctx, "DELETE FROM govclient_version"); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, "INSERT INTO govclient_version (version) VALUES ($1)", version)
	return err
}

// Upgrade upgrades the database from the current to the latest version available.
func (c *Container) Upgrade(ctx context.Context) error {
	version, err := c.getVersion(ctx)
	if err != nil {
		return err
	}
	for ; version < len(Upgrades); version++ {
		tx, err := c.db.Begin(ctx)
		if err != nil {
			return err
		}
		migrateFunc := Upgrades[version]
		c.log.Infof("Upgrading database to v%d", version+1)
		if err = migrateFunc(ctx, tx, c); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if err = c.setVersion(ctx, tx, version+1); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if err = tx.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

func upgradeV1(ctx context.Context, tx pgx.Tx, _ *Container) error {
	_, err := tx.Exec(ctx, `CREATE TABLE govclient_session (
		customer_id   TEXT PRIMARY KEY,
		customer_json JSONB NOT NULL,
		token         TEXT NOT NULL CHECK ( length(token) > 0 ),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}
