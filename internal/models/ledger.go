package models

import "github.com/mmynk/splitledger/internal/document"

// Ledger is a saved ledger.
type Ledger struct {
	// ID is the unique identifier for the ledger (UUID format).
	ID string

	// Title is the human-readable name the ledger is opened by (e.g., "Ski trip").
	Title string

	// Accounts is the ledger content in document form.
	Accounts document.Accounts

	// CreatedAt is the Unix timestamp when the ledger was first saved.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the latest save.
	UpdatedAt int64
}
