package document

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmynk/splitledger/internal/ledger"
)

// LoadFile reads the ledger stored at path, picking the format from the
// extension. A file that does not exist yet is an empty ledger.
func LoadFile(path string) (*ledger.Ledger, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Ledger file does not exist, starting empty", "path", path)
		return ledger.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	accounts, err := Read(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l, err := accounts.Ledger()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// SaveFile writes the ledger to path in the format picked from the
// extension.
func SaveFile(path string, l *ledger.Ledger) error {
	return SaveFileAs(path, l, FormatForPath(path))
}

// SaveFileAs writes the ledger to path in the given format. The document is
// written to a temporary file in the same directory and renamed over path.
func SaveFileAs(path string, l *ledger.Ledger, format Format) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, FromLedger(l), format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	slog.Debug("Ledger saved", "path", path, "users", l.NumUsers(), "purchases", l.NumPurchases())
	return nil
}
