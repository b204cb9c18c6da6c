// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitledger/internal/document"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
// Ledgers are stored as JSON documents, one row per title.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Wait for concurrent writers instead of failing with SQLITE_BUSY
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateLedger persists a new ledger to the database.
func (s *SQLiteStore) CreateLedger(ctx context.Context, ledger *models.Ledger) error {
	doc, err := encodeDocument(&ledger.Accounts)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ledgers WHERE title = ?", ledger.Title,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to check title: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", storage.ErrAlreadyExists, ledger.Title)
	}

	// Generate ID and timestamps if not set
	if ledger.ID == "" {
		ledger.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if ledger.CreatedAt == 0 {
		ledger.CreatedAt = now
	}
	ledger.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		"INSERT INTO ledgers (id, title, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		ledger.ID, ledger.Title, doc, ledger.CreatedAt, ledger.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLedger retrieves a ledger by title.
func (s *SQLiteStore) GetLedger(ctx context.Context, title string) (*models.Ledger, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, document, created_at, updated_at FROM ledgers WHERE title = ?",
		title,
	)
	ledger, err := scanLedger(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, title)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return ledger, nil
}

// UpdateLedger replaces the document of an existing ledger.
func (s *SQLiteStore) UpdateLedger(ctx context.Context, ledger *models.Ledger) error {
	doc, err := encodeDocument(&ledger.Accounts)
	if err != nil {
		return err
	}
	ledger.UpdatedAt = time.Now().Unix()

	result, err := s.db.ExecContext(ctx,
		"UPDATE ledgers SET document = ?, updated_at = ? WHERE title = ?",
		doc, ledger.UpdatedAt, ledger.Title,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, ledger.Title)
	}
	return nil
}

// ListLedgers retrieves all ledgers ordered by title.
func (s *SQLiteStore) ListLedgers(ctx context.Context) ([]*models.Ledger, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, document, created_at, updated_at FROM ledgers ORDER BY title",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*models.Ledger
	for rows.Next() {
		ledger, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		ledgers = append(ledgers, ledger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledgers: %w", err)
	}
	return ledgers, nil
}

// DeleteLedger removes a ledger by title.
func (s *SQLiteStore) DeleteLedger(ctx context.Context, title string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM ledgers WHERE title = ?", title)
	if err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, title)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLedger(row scanner) (*models.Ledger, error) {
	ledger := &models.Ledger{}
	var doc string
	if err := row.Scan(&ledger.ID, &ledger.Title, &doc, &ledger.CreatedAt, &ledger.UpdatedAt); err != nil {
		return nil, err
	}
	accounts, err := document.Unmarshal([]byte(doc), document.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document of %s: %w", ledger.Title, err)
	}
	ledger.Accounts = *accounts
	return ledger, nil
}

func encodeDocument(accounts *document.Accounts) (string, error) {
	data, err := document.Marshal(accounts, document.FormatJSON)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(data), nil
}
