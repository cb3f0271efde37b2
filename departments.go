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

	"github.com/govhub/govclient/types"
)

// GetDepartments fetches the list of municipal departments. Departments are
// public, no session is needed.
func (cli *Client) GetDepartments(ctx context.Context) ([]types.Department, error) {
	var departments []types.Department
	err := cli.sendRequest(ctx, "GET", "/departments", nil, &departments)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch departments: %w", err)
	}
	for _, dept := range departments {
		cli.departmentCache.Set(dept.ID, &dept)
	}
	return departments, nil
}

// GetDepartment fetches one department by ID. Department rows are immutable
// reference data for the lifetime of the client, so responses are cached.
func (cli *Client) GetDepartment(ctx context.Context, departmentID string) (*types.Department, error) {
	if cached, ok := cli.departmentCache.Get(departmentID); ok {
		return cached, nil
	}
	var dept types.Department
	err := cli.sendRequest(ctx, "GET", "/departments/"+url.PathEscape(departmentID), nil, &dept)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch department %s: %w", departmentID, err)
	}
	cli.departmentCache.Set(dept.ID, &dept)
	return &dept, nil
}
