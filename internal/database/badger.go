// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/launchpad/internal/logging"
)

// OpenBadger opens an embedded badger database at path, or an in-memory one
// when path is empty. Writes are synced so outbox state survives a crash.
func OpenBadger(path string) (*badger.DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
		opts.SyncWrites = true
		opts.ValueLogFileSize = 64 << 20
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	logging.Debug().Str("path", path).Bool("in_memory", path == "").Msg("Opened badger database")
	return db, nil
}
