package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/document"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/rational"
)

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "splitledger %s", strings.Join(args, " "))
	return out
}

// tripFile builds the three-user ledger used across tests through the CLI.
func tripFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trip.yaml")

	for _, name := range []string{"Simon", "Eska", "Shuba"} {
		mustRun(t, "user", "add", path, name)
	}
	out := mustRun(t, "purchase", "add", path,
		"--descr", "jambon", "--payer", "Eska", "--amount", "15",
		"--share", "Eska=1", "--share", "Shuba=2", "--share", "Simon=1")
	require.Equal(t, "0\n", out)
	out = mustRun(t, "purchase", "add", path,
		"--descr", "vin", "--payer", "Simon", "--amount", "10",
		"--share", "Shuba=2", "--share", "Simon=1")
	require.Equal(t, "1\n", out)
	return path
}

func TestBalancesCommand(t *testing.T) {
	path := tripFile(t)

	out := mustRun(t, "balances", path, "--settle")
	assert.Contains(t, out, "Eska    11.25\n")
	assert.Contains(t, out, "Shuba  -14.17\n")
	assert.Contains(t, out, "Simon    2.92\n")
	assert.Contains(t, out, "Shuba -> Eska: 11.25\n")
	assert.Contains(t, out, "Shuba -> Simon: 2.92\n")

	out = mustRun(t, "balances", path, "--decimals", "4")
	assert.Contains(t, out, "-14.1667")
	assert.NotContains(t, out, "Transfers")

	_, err := run(t, "balances", path, "--decimals", "-1")
	require.Error(t, err)
	_, err = run(t, "balances", path, "--decimals", "19")
	require.ErrorContains(t, err, "cannot exceed 18")
}

func TestBalancesAlignsWideNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.yaml")
	mustRun(t, "user", "add", path, "Zoé")
	mustRun(t, "user", "add", path, "Bo")
	mustRun(t, "purchase", "add", path,
		"--descr", "café", "--payer", "Zoé", "--amount", "10",
		"--share", "Zoé=1", "--share", "Bo=1")

	out := mustRun(t, "balances", path)
	assert.Contains(t, out, "Bo   -5\n")
	assert.Contains(t, out, "Zoé   5\n")
}

func TestBalancesReportsIgnoredPurchases(t *testing.T) {
	path := tripFile(t)
	mustRun(t, "purchase", "add", path, "--descr", "forgotten", "--payer", "Eska", "--amount", "100")

	out := mustRun(t, "balances", path)
	assert.Contains(t, out, "Eska    11.25\n")
	assert.Contains(t, out, "ignored #2 forgotten: shares sum to zero")
}

func TestBalancesOfMissingFile(t *testing.T) {
	out := mustRun(t, "balances", filepath.Join(t.TempDir(), "new.yaml"))
	assert.Contains(t, out, "no users")
}

func TestUserCommands(t *testing.T) {
	path := tripFile(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = run(t, "user", "remove", path, "Shuba")
	require.ErrorIs(t, err, ledger.ErrUserHasData)
	_, err = run(t, "user", "add", path, "Eska")
	require.ErrorIs(t, err, ledger.ErrDuplicateUser)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after), "failed commands must not touch the file")

	mustRun(t, "user", "add", path, "PlappMachine")
	l, err := document.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Eska", "PlappMachine", "Shuba", "Simon"}, l.Users())

	p, err := l.Purchase(1)
	require.NoError(t, err)
	require.Equal(t, 3, p.Payer, "payer index follows the inserted user")

	mustRun(t, "user", "remove", path, "PlappMachine")
	l, err = document.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Eska", "Shuba", "Simon"}, l.Users())
}

func TestPurchaseCommands(t *testing.T) {
	path := tripFile(t)

	mustRun(t, "purchase", "share", path, "1", "Eska", "3")
	mustRun(t, "purchase", "payer", path, "1", "Shuba")
	mustRun(t, "purchase", "amount", path, "1", "12.25")
	mustRun(t, "purchase", "describe", path, "1", "vin rouge")
	mustRun(t, "purchase", "remove", path, "0")

	l, err := document.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, l.NumPurchases())

	p, err := l.Purchase(0)
	require.NoError(t, err)
	assert.Equal(t, "vin rouge", p.Description)
	assert.Equal(t, 1, p.Payer)
	assert.Equal(t, "12.25", rational.Format(p.Amount, 2))
	assert.Equal(t, "3", rational.Format(p.Shares[0], 0))
}

func TestPurchaseCommandErrors(t *testing.T) {
	path := tripFile(t)

	tests := []struct {
		name string
		args []string
	}{
		{"index not a number", []string{"purchase", "remove", path, "first"}},
		{"index out of range", []string{"purchase", "remove", path, "2"}},
		{"unknown payer", []string{"purchase", "payer", path, "0", "Nobody"}},
		{"bad amount", []string{"purchase", "amount", path, "0", "1,5"}},
		{"empty description", []string{"purchase", "describe", path, "0", ""}},
		{"malformed share", []string{"purchase", "add", path, "--descr", "x", "--payer", "Eska", "--amount", "1", "--share", "Eska"}},
		{"unknown beneficiary", []string{"purchase", "add", path, "--descr", "x", "--payer", "Eska", "--amount", "1", "--share", "Nobody=1"}},
		{"missing flag", []string{"purchase", "add", path, "--descr", "x", "--payer", "Eska"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)

			l, err := document.LoadFile(path)
			require.NoError(t, err)
			require.Equal(t, 2, l.NumPurchases())
		})
	}
}

func TestShowAndConvert(t *testing.T) {
	path := tripFile(t)

	out := mustRun(t, "show", path, "--format", "json")
	assert.Contains(t, out, `"who": "Eska"`)
	assert.Contains(t, out, `"benef_to_shares"`)

	jsonPath := filepath.Join(filepath.Dir(path), "trip.json")
	mustRun(t, "convert", path, jsonPath)

	original, err := document.LoadFile(path)
	require.NoError(t, err)
	converted, err := document.LoadFile(jsonPath)
	require.NoError(t, err)
	require.True(t, original.Equal(converted))

	_, err = run(t, "show", path, "--format", "toml")
	require.Error(t, err)
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBalancesWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.yaml")
	mustRun(t, "user", "add", path, "a")
	mustRun(t, "user", "add", path, "b")
	mustRun(t, "purchase", "add", path, "--descr", "lunch", "--payer", "a", "--amount", "10", "--share", "a=1", "--share", "b=1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"balances", path, "--watch"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "b  -5")
	}, 5*time.Second, 10*time.Millisecond)

	// The watcher may not be registered yet, so keep rewriting until the
	// new balance shows up.
	require.Eventually(t, func() bool {
		if strings.Contains(out.String(), "b  -10") {
			return true
		}
		_ = editFile(path, func(l *ledger.Ledger) error {
			return l.ChangeAmount(0, rational.MustParse("20"))
		})
		return false
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
