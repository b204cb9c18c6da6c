// Package document converts ledgers to and from their human-editable form.
//
// The document form names users instead of indexing them, and lists only the
// shares a purchase actually assigns:
//
//	users: [Eska, Shuba, Simon]
//	purchases:
//	  - descr: jambon
//	    who: Eska
//	    amount: "15"
//	    benef_to_shares: {Eska: "1", Shuba: "2", Simon: "1"}
//
// Amounts and weights are decimal text, converted with package rational.
package document

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/rational"
)

// Decimals is the number of decimal digits written for amounts and weights
// that have no finite decimal expansion. Values with a finite expansion,
// which includes everything parsed from decimal text, are written exactly.
const Decimals = 12

// Purchase is the document form of ledger.Purchase.
type Purchase struct {
	Description string            `yaml:"descr" json:"descr"`
	Payer       string            `yaml:"who" json:"who"`
	Amount      string            `yaml:"amount" json:"amount"`
	Shares      map[string]string `yaml:"benef_to_shares" json:"benef_to_shares"`
}

// Accounts is the document form of a whole ledger. Users may contain
// duplicates and need not be sorted.
type Accounts struct {
	Users     []string   `yaml:"users" json:"users"`
	Purchases []Purchase `yaml:"purchases" json:"purchases"`
}

// Ledger validates the document and builds the dense ledger it describes.
// Users are sorted and deduplicated; every payer and share name must be one
// of them.
func (a *Accounts) Ledger() (*ledger.Ledger, error) {
	users := slices.Clone(a.Users)
	slices.Sort(users)
	users = slices.Compact(users)

	index := func(name string) (int, error) {
		idx, found := slices.BinarySearch(users, name)
		if !found {
			return 0, &ledger.UserError{Name: name, Err: ledger.ErrUnknownUser}
		}
		return idx, nil
	}

	purchases := make([]ledger.Purchase, 0, len(a.Purchases))
	for i, p := range a.Purchases {
		payer, err := index(p.Payer)
		if err != nil {
			return nil, fmt.Errorf("purchase %d (%s): %w", i, p.Description, err)
		}
		amount, err := ledger.ParseRational(p.Amount)
		if err != nil {
			return nil, fmt.Errorf("purchase %d (%s) amount: %w", i, p.Description, err)
		}

		shares := make([]*big.Rat, len(users))
		for u := range shares {
			shares[u] = new(big.Rat)
		}
		names := make([]string, 0, len(p.Shares))
		for name := range p.Shares {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			u, err := index(name)
			if err != nil {
				return nil, fmt.Errorf("purchase %d (%s) shares: %w", i, p.Description, err)
			}
			weight, err := ledger.ParseRational(p.Shares[name])
			if err != nil {
				return nil, fmt.Errorf("purchase %d (%s) share of %s: %w", i, p.Description, name, err)
			}
			shares[u] = weight
		}

		purchases = append(purchases, ledger.Purchase{
			Description: p.Description,
			Payer:       payer,
			Amount:      amount,
			Shares:      shares,
		})
	}
	return ledger.Build(users, purchases)
}

// FromLedger projects a ledger back to its document form. Zero shares are
// left out.
func FromLedger(l *ledger.Ledger) *Accounts {
	users := l.Users()
	accounts := &Accounts{
		Users:     users,
		Purchases: make([]Purchase, 0, l.NumPurchases()),
	}
	for _, p := range l.Purchases() {
		shares := make(map[string]string)
		for u, w := range p.Shares {
			if w.Sign() != 0 {
				shares[users[u]] = rational.FormatExact(w, Decimals)
			}
		}
		accounts.Purchases = append(accounts.Purchases, Purchase{
			Description: p.Description,
			Payer:       users[p.Payer],
			Amount:      rational.FormatExact(p.Amount, Decimals),
			Shares:      shares,
		})
	}
	return accounts
}
