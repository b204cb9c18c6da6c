package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/mmynk/splitledger/internal/rational"
)

// Validation failures reported by ledger operations. They are returned
// wrapped in *UserError or *PurchaseIndexError when a name or index is
// involved; use errors.Is to test for the kind.
var (
	ErrEmptyName            = errors.New("user name cannot be empty")
	ErrEmptyDescription     = errors.New("description cannot be empty")
	ErrUnknownUser          = errors.New("unknown user")
	ErrDuplicateUser        = errors.New("user already present")
	ErrUserHasData          = errors.New("user has paid a purchase or holds shares")
	ErrInvalidPurchaseIndex = errors.New("purchase does not exist")
	ErrRationalParseFailed  = errors.New("could not parse rational")
)

// UserError ties a failure to the user name that caused it.
type UserError struct {
	Name string
	Err  error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Name)
}

func (e *UserError) Unwrap() error { return e.Err }

// PurchaseIndexError reports an out-of-range purchase index.
type PurchaseIndexError struct {
	Index int
}

func (e *PurchaseIndexError) Error() string {
	return fmt.Sprintf("purchase %d does not exist", e.Index)
}

func (e *PurchaseIndexError) Unwrap() error { return ErrInvalidPurchaseIndex }

// ParseRational parses decimal text into an exact value. Failures match both
// ErrRationalParseFailed and the underlying rational error kind.
func ParseRational(text string) (*big.Rat, error) {
	r, err := rational.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRationalParseFailed, err)
	}
	return r, nil
}

func unknownUser(name string) error {
	return &UserError{Name: name, Err: ErrUnknownUser}
}
