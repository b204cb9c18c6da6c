package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mmynk/splitledger/internal/document"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleAccounts() document.Accounts {
	return document.Accounts{
		Users: []string{"Eska", "Shuba", "Simon"},
		Purchases: []document.Purchase{
			{
				Description: "jambon",
				Payer:       "Eska",
				Amount:      "15",
				Shares:      map[string]string{"Eska": "1", "Shuba": "2", "Simon": "1"},
			},
		},
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateLedger generates ID and timestamps", func(t *testing.T) {
		ledger := &models.Ledger{Title: "Ski trip", Accounts: sampleAccounts()}

		require.NoError(t, store.CreateLedger(ctx, ledger))
		require.NotEmpty(t, ledger.ID)
		require.NotZero(t, ledger.CreatedAt)
		require.Equal(t, ledger.CreatedAt, ledger.UpdatedAt)
	})

	t.Run("CreateLedger rejects a title in use", func(t *testing.T) {
		err := store.CreateLedger(ctx, &models.Ledger{Title: "Ski trip"})
		require.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("GetLedger retrieves the document", func(t *testing.T) {
		retrieved, err := store.GetLedger(ctx, "Ski trip")
		require.NoError(t, err)
		require.Equal(t, "Ski trip", retrieved.Title)
		require.Equal(t, sampleAccounts(), retrieved.Accounts)
	})

	t.Run("GetLedger returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetLedger(ctx, "nonexistent")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateLedger replaces the document", func(t *testing.T) {
		ledger, err := store.GetLedger(ctx, "Ski trip")
		require.NoError(t, err)
		ledger.Accounts.Users = append(ledger.Accounts.Users, "PlappMachine")
		require.NoError(t, store.UpdateLedger(ctx, ledger))

		retrieved, err := store.GetLedger(ctx, "Ski trip")
		require.NoError(t, err)
		require.Equal(t, ledger.ID, retrieved.ID)
		require.Contains(t, retrieved.Accounts.Users, "PlappMachine")
	})

	t.Run("UpdateLedger returns ErrNotFound", func(t *testing.T) {
		err := store.UpdateLedger(ctx, &models.Ledger{Title: "nonexistent"})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListLedgers orders by title", func(t *testing.T) {
		require.NoError(t, store.CreateLedger(ctx, &models.Ledger{Title: "Apartment"}))

		ledgers, err := store.ListLedgers(ctx)
		require.NoError(t, err)
		require.Len(t, ledgers, 2)
		require.Equal(t, "Apartment", ledgers[0].Title)
		require.Equal(t, "Ski trip", ledgers[1].Title)
	})

	t.Run("DeleteLedger removes the ledger", func(t *testing.T) {
		require.NoError(t, store.DeleteLedger(ctx, "Apartment"))
		_, err := store.GetLedger(ctx, "Apartment")
		require.ErrorIs(t, err, storage.ErrNotFound)

		err = store.DeleteLedger(ctx, "Apartment")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStoredDocumentBuildsLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateLedger(ctx, &models.Ledger{Title: "Dinner", Accounts: sampleAccounts()}))
	retrieved, err := store.GetLedger(ctx, "Dinner")
	require.NoError(t, err)

	l, err := retrieved.Accounts.Ledger()
	require.NoError(t, err)
	require.Equal(t, 3, l.NumUsers())
	require.Equal(t, 1, l.NumPurchases())
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgers.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.CreateLedger(ctx, &models.Ledger{Title: "Persistent", Accounts: sampleAccounts()}))
	require.NoError(t, store.Close())

	store, err = New(path)
	require.NoError(t, err)
	defer store.Close()

	retrieved, err := store.GetLedger(ctx, "Persistent")
	require.NoError(t, err)
	require.Equal(t, sampleAccounts(), retrieved.Accounts)
}
