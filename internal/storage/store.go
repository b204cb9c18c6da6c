// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when no ledger has the requested title.
	ErrNotFound = errors.New("ledger not found")

	// ErrAlreadyExists is returned when creating a ledger under a title in use.
	ErrAlreadyExists = errors.New("ledger already exists")
)

// Store defines the interface for saved ledger operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateLedger persists a new ledger.
	// The ID and timestamps will be populated by the store.
	CreateLedger(ctx context.Context, ledger *models.Ledger) error

	// GetLedger retrieves a ledger by its title.
	// Returns ErrNotFound if no ledger has that title.
	GetLedger(ctx context.Context, title string) (*models.Ledger, error)

	// UpdateLedger replaces the content of an existing ledger.
	// Returns ErrNotFound if the ledger does not exist.
	UpdateLedger(ctx context.Context, ledger *models.Ledger) error

	// ListLedgers returns every saved ledger ordered by title.
	ListLedgers(ctx context.Context) ([]*models.Ledger, error)

	// DeleteLedger removes a ledger by its title.
	// Returns ErrNotFound if no ledger has that title.
	DeleteLedger(ctx context.Context, title string) error

	// Close releases any resources held by the store.
	Close() error
}
