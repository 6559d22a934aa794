// Package backend selects and constructs the record store implementation
// based on configuration.
package backend

import (
	"fmt"

	"factoring/internal/config"
	"factoring/internal/ledger"
	"factoring/internal/ledger/memory"
	"factoring/internal/storage"
)

// Type represents the kind of record store backing the service.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// IsValid checks if the backend type is supported
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   ledger.RecordStore
	Cleanup CleanupFunc
}

// New creates the record store named by the application config.
func New(cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}

	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		return &Result{Store: repo, Cleanup: repo.Close}, nil
	default:
		return &Result{Store: memory.New(), Cleanup: func() error { return nil }}, nil
	}
}
