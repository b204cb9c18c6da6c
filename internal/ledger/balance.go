package ledger

import (
	"cmp"
	"log/slog"
	"math/big"
	"slices"

	"github.com/mmynk/splitledger/internal/rational"
)

// Report holds the balance of every user.
type Report struct {
	// Users is the sorted user list, aligned with Balances.
	Users []string

	// Balances is the net position of each user. Positive = the group owes
	// them money, negative = they owe the group.
	Balances []*big.Rat

	// Ignored lists the indices of purchases whose shares sum to zero. Such a
	// purchase cannot be divided and is left out of the balances.
	Ignored []int
}

// Transfer is a payment that settles part of the debts.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount *big.Rat
}

// Balances computes each user's net balance over all purchases.
//
// Algorithm:
// - For each purchase: payer is credited the full amount
// - Each user is debited amount * weight / total weight
// - Purchases with a zero total weight are skipped and reported
//
// Arithmetic is exact, so the balances of a ledger without ignored purchases
// always sum to zero.
func (l *Ledger) Balances() *Report {
	report := &Report{
		Users:    l.Users(),
		Balances: make([]*big.Rat, len(l.users)),
	}
	for i := range report.Balances {
		report.Balances[i] = new(big.Rat)
	}

	for i, p := range l.purchases {
		total := p.TotalShares()
		if total.Sign() == 0 {
			slog.Warn("Purchase ignored: shares sum to zero",
				"index", i,
				"description", p.Description,
				"amount", rational.Format(p.Amount, 2),
			)
			report.Ignored = append(report.Ignored, i)
			continue
		}

		for u, share := range p.Shares {
			if share.Sign() == 0 {
				continue
			}
			owed := new(big.Rat).Mul(p.Amount, share)
			owed.Quo(owed, total)
			report.Balances[u].Sub(report.Balances[u], owed)
		}
		report.Balances[p.Payer].Add(report.Balances[p.Payer], p.Amount)
	}
	return report
}

// Balance returns the balance of name.
func (r *Report) Balance(name string) (*big.Rat, bool) {
	idx, found := slices.BinarySearch(r.Users, name)
	if !found {
		return nil, false
	}
	return rational.Clone(r.Balances[idx]), true
}

// Total returns the sum of all balances. Every counted purchase credits its
// payer exactly what it debits the beneficiaries and ignored purchases add
// nothing, so the total is always zero.
func (r *Report) Total() *big.Rat {
	total := new(big.Rat)
	for _, b := range r.Balances {
		total.Add(total, b)
	}
	return total
}

type position struct {
	name   string
	amount *big.Rat
}

// Settle suggests transfers that clear every balance, matching the largest
// debtor with the largest creditor until nothing is left. Amounts are exact.
func (r *Report) Settle() []Transfer {
	var creditors, debtors []position
	for i, b := range r.Balances {
		switch b.Sign() {
		case 1:
			creditors = append(creditors, position{r.Users[i], rational.Clone(b)})
		case -1:
			debtors = append(debtors, position{r.Users[i], new(big.Rat).Neg(b)})
		}
	}
	byAmount := func(a, b position) int {
		if c := b.amount.Cmp(a.amount); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	}
	slices.SortFunc(creditors, byAmount)
	slices.SortFunc(debtors, byAmount)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := debtor.amount
		if creditor.amount.Cmp(amount) < 0 {
			amount = creditor.amount
		}
		amount = rational.Clone(amount)

		transfers = append(transfers, Transfer{
			From:   debtor.name,
			To:     creditor.name,
			Amount: amount,
		})

		debtor.amount.Sub(debtor.amount, amount)
		creditor.amount.Sub(creditor.amount, amount)
		if debtor.amount.Sign() == 0 {
			i++
		}
		if creditor.amount.Sign() == 0 {
			j++
		}
	}
	return transfers
}
