package document

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/rational"
)

const sampleYAML = `
users:
  - Simon
  - Shuba
  - Eska
  - Simon
purchases:
  - descr: jambon
    who: Eska
    amount: 15
    benef_to_shares:
      Eska: 1
      Shuba: 2
      Simon: 1
  - descr: vin
    who: Simon
    amount: "10.50"
    benef_to_shares:
      Shuba: "2"
      Simon: 0.5
`

var ratComparer = cmp.Comparer(func(a, b *big.Rat) bool { return a.Cmp(b) == 0 })

func TestAccountsLedger(t *testing.T) {
	accounts, err := Unmarshal([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	l, err := accounts.Ledger()
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"Eska", "Shuba", "Simon"}, l.Users()); diff != "" {
		t.Errorf("users mismatch (-want +got):\n%s", diff)
	}

	want := []ledger.Purchase{
		{
			Description: "jambon",
			Payer:       0,
			Amount:      big.NewRat(15, 1),
			Shares:      []*big.Rat{big.NewRat(1, 1), big.NewRat(2, 1), big.NewRat(1, 1)},
		},
		{
			Description: "vin",
			Payer:       2,
			Amount:      big.NewRat(21, 2),
			Shares:      []*big.Rat{new(big.Rat), big.NewRat(2, 1), big.NewRat(1, 2)},
		},
	}
	if diff := cmp.Diff(want, l.Purchases(), ratComparer); diff != "" {
		t.Errorf("purchases mismatch (-want +got):\n%s", diff)
	}
}

func TestAccountsLedgerErrors(t *testing.T) {
	tests := []struct {
		name     string
		accounts Accounts
		wantErr  error
	}{
		{
			name: "unknown payer",
			accounts: Accounts{
				Users:     []string{"a"},
				Purchases: []Purchase{{Description: "x", Payer: "b", Amount: "1"}},
			},
			wantErr: ledger.ErrUnknownUser,
		},
		{
			name: "bad amount",
			accounts: Accounts{
				Users:     []string{"a"},
				Purchases: []Purchase{{Description: "x", Payer: "a", Amount: "1,5"}},
			},
			wantErr: ledger.ErrRationalParseFailed,
		},
		{
			name: "empty amount",
			accounts: Accounts{
				Users:     []string{"a"},
				Purchases: []Purchase{{Description: "x", Payer: "a", Amount: ""}},
			},
			wantErr: rational.ErrEmptyInput,
		},
		{
			name: "unknown beneficiary",
			accounts: Accounts{
				Users:     []string{"a"},
				Purchases: []Purchase{{Description: "x", Payer: "a", Amount: "1", Shares: map[string]string{"a": "1", "z": "1"}}},
			},
			wantErr: ledger.ErrUnknownUser,
		},
		{
			name: "bad weight",
			accounts: Accounts{
				Users:     []string{"a"},
				Purchases: []Purchase{{Description: "x", Payer: "a", Amount: "1", Shares: map[string]string{"a": "one"}}},
			},
			wantErr: rational.ErrInvalidNumerator,
		},
		{
			name:     "empty user name",
			accounts: Accounts{Users: []string{"", "a"}},
			wantErr:  ledger.ErrEmptyName,
		},
		{
			name: "empty description",
			accounts: Accounts{
				Users:     []string{"a"},
				Purchases: []Purchase{{Payer: "a", Amount: "1"}},
			},
			wantErr: ledger.ErrEmptyDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.accounts.Ledger()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Ledger() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnknownBeneficiaryNamed(t *testing.T) {
	accounts := Accounts{
		Users:     []string{"a"},
		Purchases: []Purchase{{Description: "x", Payer: "a", Amount: "1", Shares: map[string]string{"y": "1", "z": "1"}}},
	}
	_, err := accounts.Ledger()

	var uerr *ledger.UserError
	require.True(t, errors.As(err, &uerr))
	require.Equal(t, "y", uerr.Name, "the first unknown name in sorted order is reported")
}

func TestFromLedgerRoundTrip(t *testing.T) {
	accounts, err := Unmarshal([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)
	l, err := accounts.Ledger()
	require.NoError(t, err)

	projected := FromLedger(l)
	require.Equal(t, []string{"Eska", "Shuba", "Simon"}, projected.Users)
	require.Equal(t, "10.5", projected.Purchases[1].Amount)
	require.Equal(t, map[string]string{"Shuba": "2", "Simon": "0.5"}, projected.Purchases[1].Shares,
		"zero shares are left out")

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(projected, format)
			require.NoError(t, err)
			decoded, err := Unmarshal(data, format)
			require.NoError(t, err)
			back, err := decoded.Ledger()
			require.NoError(t, err)
			require.True(t, back.Equal(l), "round trip through %s changed the ledger:\n%s", format, data)
		})
	}
}

func TestFromLedgerKeepsPrecision(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.AddUser("a"))
	idx, err := l.AddPurchase("x", "a", rational.MustParse("3.00523"))
	require.NoError(t, err)
	require.NoError(t, l.SetShare(idx, "a", rational.MustParse("0.000000000001")))

	p := FromLedger(l).Purchases[0]
	require.Equal(t, "3.00523", p.Amount)
	require.Equal(t, "0.000000000001", p.Shares["a"])
}

func TestSaveKeepsLongDecimals(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.AddUser("a"))
	require.NoError(t, l.AddUser("b"))
	idx, err := l.AddPurchase("x", "a", rational.MustParse("10.0000000000004"))
	require.NoError(t, err)
	require.NoError(t, l.SetShare(idx, "b", rational.MustParse("0.0000000000001")))

	path := filepath.Join(t.TempDir(), "accounts.yml")
	require.NoError(t, SaveFile(path, l))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "10.0000000000004")
	require.Contains(t, string(data), "0.0000000000001")

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.True(t, loaded.Equal(l), "saved ledger differs:\n%s", data)

	report := loaded.Balances()
	require.Empty(t, report.Ignored)
	want := rational.MustParse("10.0000000000004")
	balance, ok := report.Balance("a")
	require.True(t, ok)
	require.Equal(t, 0, balance.Cmp(want))
}

func TestReadEmptyYAML(t *testing.T) {
	accounts, err := Read(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	l, err := accounts.Ledger()
	require.NoError(t, err)
	require.Equal(t, 0, l.NumUsers())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"yaml": FormatYAML, "YML": FormatYAML, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("toml")
	require.Error(t, err)

	require.Equal(t, FormatJSON, FormatForPath("/tmp/accounts.JSON"))
	require.Equal(t, FormatYAML, FormatForPath("accounts.yml"))
	require.Equal(t, FormatYAML, FormatForPath("accounts"))
}

func TestLoadSaveFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is an empty ledger", func(t *testing.T) {
		l, err := LoadFile(filepath.Join(dir, "new.yml"))
		require.NoError(t, err)
		require.Equal(t, 0, l.NumUsers())
		require.Equal(t, 0, l.NumPurchases())
	})

	for _, name := range []string{"accounts.yml", "nested/accounts.json"} {
		t.Run(name, func(t *testing.T) {
			accounts, err := Unmarshal([]byte(sampleYAML), FormatYAML)
			require.NoError(t, err)
			l, err := accounts.Ledger()
			require.NoError(t, err)

			path := filepath.Join(dir, name)
			require.NoError(t, SaveFile(path, l))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			require.True(t, loaded.Equal(l))

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			for _, e := range entries {
				require.False(t, strings.HasPrefix(e.Name(), "."), "temp file %s left behind", e.Name())
			}
		})
	}

	t.Run("invalid document", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yml")
		require.NoError(t, os.WriteFile(path, []byte("users: [a]\npurchases:\n  - {descr: x, who: b, amount: '1'}\n"), 0644))
		_, err := LoadFile(path)
		require.ErrorIs(t, err, ledger.ErrUnknownUser)
	})
}
