// Package ledger holds the shared-expense ledger: a sorted set of users and a
// list of purchases, each split among the users by weighted shares.
//
// Users are identified by their position in the sorted user list. Every
// purchase stores its payer as such a position and one share weight per
// user, aligned with the user list. Adding or removing a user re-indexes
// every purchase in the same call, so the alignment always holds.
//
// All mutations validate their input before touching any state: a failed
// call leaves the ledger exactly as it was.
//
// A Ledger is not safe for concurrent use. Callers sharing one across
// goroutines must serialize mutations.
package ledger

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/mmynk/splitledger/internal/rational"
)

// Purchase is one expense: Payer fronted Amount, and each user owes a part of
// it proportional to their weight in Shares. A zero weight means the user
// did not benefit. Weights need not sum to one.
type Purchase struct {
	Description string
	Payer       int
	Amount      *big.Rat
	Shares      []*big.Rat
}

func (p Purchase) clone() Purchase {
	shares := make([]*big.Rat, len(p.Shares))
	for i, s := range p.Shares {
		shares[i] = rational.Clone(s)
	}
	return Purchase{
		Description: p.Description,
		Payer:       p.Payer,
		Amount:      rational.Clone(p.Amount),
		Shares:      shares,
	}
}

// TotalShares returns the sum of all weights of the purchase.
func (p Purchase) TotalShares() *big.Rat {
	total := new(big.Rat)
	for _, s := range p.Shares {
		total.Add(total, s)
	}
	return total
}

// Ledger owns the users and purchases of one group.
type Ledger struct {
	users     []string
	purchases []Purchase
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Build assembles a ledger from its dense form. users must be sorted, unique
// and non-empty; each purchase must reference a valid payer, carry one share
// per user and have a description. Inputs are copied.
func Build(users []string, purchases []Purchase) (*Ledger, error) {
	for i, name := range users {
		if name == "" {
			return nil, ErrEmptyName
		}
		if i > 0 {
			switch {
			case users[i-1] == name:
				return nil, &UserError{Name: name, Err: ErrDuplicateUser}
			case users[i-1] > name:
				return nil, fmt.Errorf("users are not sorted: %q before %q", users[i-1], name)
			}
		}
	}

	l := &Ledger{
		users:     slices.Clone(users),
		purchases: make([]Purchase, 0, len(purchases)),
	}
	for i, p := range purchases {
		if p.Description == "" {
			return nil, fmt.Errorf("purchase %d: %w", i, ErrEmptyDescription)
		}
		if p.Payer < 0 || p.Payer >= len(users) {
			return nil, fmt.Errorf("purchase %d: payer index %d out of range", i, p.Payer)
		}
		if len(p.Shares) != len(users) {
			return nil, fmt.Errorf("purchase %d: %d shares for %d users", i, len(p.Shares), len(users))
		}
		l.purchases = append(l.purchases, p.clone())
	}
	return l, nil
}

// Users returns the sorted user names.
func (l *Ledger) Users() []string {
	return slices.Clone(l.users)
}

// NumUsers returns the number of users.
func (l *Ledger) NumUsers() int { return len(l.users) }

// UserIndex returns the position of name in the sorted user list.
func (l *Ledger) UserIndex(name string) (int, bool) {
	return slices.BinarySearch(l.users, name)
}

// Purchases returns a copy of every purchase, in order.
func (l *Ledger) Purchases() []Purchase {
	out := make([]Purchase, len(l.purchases))
	for i, p := range l.purchases {
		out[i] = p.clone()
	}
	return out
}

// NumPurchases returns the number of purchases.
func (l *Ledger) NumPurchases() int { return len(l.purchases) }

// Purchase returns a copy of the purchase at index i.
func (l *Ledger) Purchase(i int) (Purchase, error) {
	if err := l.checkPurchase(i); err != nil {
		return Purchase{}, err
	}
	return l.purchases[i].clone(), nil
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{users: l.Users(), purchases: l.Purchases()}
}

// Equal reports whether both ledgers hold the same users and purchases.
// Rational values are compared by value.
func (l *Ledger) Equal(other *Ledger) bool {
	if !slices.Equal(l.users, other.users) || len(l.purchases) != len(other.purchases) {
		return false
	}
	for i, p := range l.purchases {
		q := other.purchases[i]
		if p.Description != q.Description || p.Payer != q.Payer || p.Amount.Cmp(q.Amount) != 0 {
			return false
		}
		if !slices.EqualFunc(p.Shares, q.Shares, func(a, b *big.Rat) bool { return a.Cmp(b) == 0 }) {
			return false
		}
	}
	return true
}

// AddUser inserts name at its sorted position. The new user holds a zero
// share in every existing purchase.
func (l *Ledger) AddUser(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	idx, found := l.UserIndex(name)
	if found {
		return &UserError{Name: name, Err: ErrDuplicateUser}
	}

	l.users = slices.Insert(l.users, idx, name)
	for i := range l.purchases {
		p := &l.purchases[i]
		p.Shares = slices.Insert(p.Shares, idx, new(big.Rat))
		if p.Payer >= idx {
			p.Payer++
		}
	}
	return nil
}

// RemoveUser deletes name from the ledger. A user who paid for a purchase or
// holds a positive share in one cannot be removed.
func (l *Ledger) RemoveUser(name string) error {
	idx, found := l.UserIndex(name)
	if !found {
		return unknownUser(name)
	}
	for _, p := range l.purchases {
		if p.Payer == idx || p.Shares[idx].Sign() > 0 {
			return &UserError{Name: name, Err: ErrUserHasData}
		}
	}

	l.users = slices.Delete(l.users, idx, idx+1)
	for i := range l.purchases {
		p := &l.purchases[i]
		p.Shares = slices.Delete(p.Shares, idx, idx+1)
		if p.Payer > idx {
			p.Payer--
		}
	}
	return nil
}

// AddPurchase appends a purchase paid by payer with every share at zero and
// returns its index. Shares are filled in afterwards with SetShare.
func (l *Ledger) AddPurchase(description, payer string, amount *big.Rat) (int, error) {
	if payer == "" {
		return 0, ErrEmptyName
	}
	if description == "" {
		return 0, ErrEmptyDescription
	}
	payerIdx, found := l.UserIndex(payer)
	if !found {
		return 0, unknownUser(payer)
	}

	shares := make([]*big.Rat, len(l.users))
	for i := range shares {
		shares[i] = new(big.Rat)
	}
	l.purchases = append(l.purchases, Purchase{
		Description: description,
		Payer:       payerIdx,
		Amount:      rational.Clone(amount),
		Shares:      shares,
	})
	return len(l.purchases) - 1, nil
}

// SetShare overwrites the weight of user in purchase i.
func (l *Ledger) SetShare(i int, user string, weight *big.Rat) error {
	userIdx, found := l.UserIndex(user)
	if !found {
		return unknownUser(user)
	}
	if err := l.checkPurchase(i); err != nil {
		return err
	}
	l.purchases[i].Shares[userIdx] = rational.Clone(weight)
	return nil
}

// SetShares overwrites the weights of several users in purchase i at once.
// Users absent from weights keep their current share.
func (l *Ledger) SetShares(i int, weights map[string]*big.Rat) error {
	if err := l.checkPurchase(i); err != nil {
		return err
	}
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	slices.Sort(names)

	positions := make([]int, len(names))
	for k, name := range names {
		idx, found := l.UserIndex(name)
		if !found {
			return unknownUser(name)
		}
		positions[k] = idx
	}
	for k, name := range names {
		l.purchases[i].Shares[positions[k]] = rational.Clone(weights[name])
	}
	return nil
}

// ChangePayer makes name the payer of purchase i.
func (l *Ledger) ChangePayer(i int, name string) error {
	payerIdx, found := l.UserIndex(name)
	if !found {
		return unknownUser(name)
	}
	if err := l.checkPurchase(i); err != nil {
		return err
	}
	l.purchases[i].Payer = payerIdx
	return nil
}

// ChangeAmount sets the amount of purchase i.
func (l *Ledger) ChangeAmount(i int, amount *big.Rat) error {
	if err := l.checkPurchase(i); err != nil {
		return err
	}
	l.purchases[i].Amount = rational.Clone(amount)
	return nil
}

// ChangeDescription sets the description of purchase i.
func (l *Ledger) ChangeDescription(i int, description string) error {
	if description == "" {
		return ErrEmptyDescription
	}
	if err := l.checkPurchase(i); err != nil {
		return err
	}
	l.purchases[i].Description = description
	return nil
}

// RemovePurchase deletes purchase i. Purchases after it move down one index.
func (l *Ledger) RemovePurchase(i int) error {
	if err := l.checkPurchase(i); err != nil {
		return err
	}
	l.purchases = slices.Delete(l.purchases, i, i+1)
	return nil
}

func (l *Ledger) checkPurchase(i int) error {
	if i < 0 || i >= len(l.purchases) {
		return &PurchaseIndexError{Index: i}
	}
	return nil
}
