// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the govhub CLI configuration. Every field can also be set
// through the environment, which wins over the file.
type Config struct {
	// BaseURL is the API root, including the /api prefix.
	BaseURL string `yaml:"base_url"`
	// DatabaseURL selects the PostgreSQL session store. When empty, the
	// session is kept in an encrypted file at SessionFile instead.
	DatabaseURL string `yaml:"database_url"`
	SessionFile string `yaml:"session_file"`
	// SessionPassphrase protects the session file. Only respected from the
	// environment so it never ends up in a config file.
	SessionPassphrase string `yaml:"-"`
	LogLevel          string `yaml:"log_level"`
	Proxy             string `yaml:"proxy"`
}

const defaultBaseURL = "https://govhub-backend-6375764a4f5c.herokuapp.com/api"

func loadConfig(path string) (Config, error) {
	cfg := Config{
		BaseURL:     defaultBaseURL,
		SessionFile: "govhub-session.dat",
		LogLevel:    "info",
	}
	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err == nil {
		if err = yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	overrideFromEnv(&cfg.BaseURL, "GOVHUB_BASE_URL")
	overrideFromEnv(&cfg.DatabaseURL, "GOVHUB_DB_DSN")
	overrideFromEnv(&cfg.SessionFile, "GOVHUB_SESSION_FILE")
	overrideFromEnv(&cfg.LogLevel, "GOVHUB_LOG_LEVEL")
	overrideFromEnv(&cfg.Proxy, "GOVHUB_PROXY")
	cfg.SessionPassphrase = os.Getenv("GOVHUB_SESSION_PASSPHRASE")
	if cfg.SessionPassphrase == "" {
		cfg.SessionPassphrase = "govhub-local"
	}
	return cfg, nil
}

func overrideFromEnv(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}
