// Package rational converts between decimal text and exact rational values.
//
// Every monetary amount and share weight crosses the program boundary
// (files, RPC messages, CLI arguments) as decimal text such as "3.00523".
// Inside the program the value is a *big.Rat, always in lowest terms, so
// that balance arithmetic never rounds. Only Format rounds, for display.
package rational

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDecimals bounds the precision callers may request for display.
const MaxDecimals = 18

var (
	// ErrEmptyInput is returned when there is nothing to parse, or when the
	// integral part before the '.' is missing.
	ErrEmptyInput = errors.New("could not parse empty string as a rational")

	// ErrInvalidNumerator is returned when the integral part is not an integer.
	ErrInvalidNumerator = errors.New("invalid integral part")

	// ErrInvalidDenominator is returned when the decimal part is not a digit string.
	ErrInvalidDenominator = errors.New("invalid decimal part")
)

// ParseError describes a failed Parse. Err is one of the Err* kinds above.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse rational %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads a decimal string of the form [+-]<integral>[.<decimals>].
// Surrounding whitespace is ignored and the decimal part may have any length.
// The sign applies to the whole value: "-1.5" is -3/2.
func Parse(text string) (*big.Rat, error) {
	s := strings.TrimSpace(text)
	integral, decimals, hasDecimals := strings.Cut(s, ".")
	if integral == "" {
		return nil, &ParseError{Input: text, Err: ErrEmptyInput}
	}

	neg := false
	switch integral[0] {
	case '-':
		neg = true
		integral = integral[1:]
	case '+':
		integral = integral[1:]
	}
	if !isDigits(integral) {
		return nil, &ParseError{Input: text, Err: ErrInvalidNumerator}
	}
	n, _ := new(big.Int).SetString(integral, 10)
	r := new(big.Rat).SetInt(n)

	if hasDecimals {
		if !isDigits(decimals) {
			return nil, &ParseError{Input: text, Err: ErrInvalidDenominator}
		}
		num, _ := new(big.Int).SetString(decimals, 10)
		den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(decimals))), nil)
		r.Add(r, new(big.Rat).SetFrac(num, den))
	}
	if neg {
		r.Neg(r)
	}
	return r, nil
}

// MustParse is like Parse but panics on malformed input.
// It is meant for constants in tests and examples.
func MustParse(text string) *big.Rat {
	r, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return r
}

// Format renders r as decimal text with at most maxDecimals digits after the
// point. Integers are rendered without a point. Other values are rounded to
// the nearest multiple of 10^-maxDecimals, ties away from zero, and trailing
// zeros are dropped. If rounding leaves no fractional digits the result is a
// plain integer.
func Format(r *big.Rat, maxDecimals int) string {
	if r == nil {
		return "0"
	}
	if r.IsInt() {
		return r.Num().String()
	}
	if maxDecimals < 0 {
		maxDecimals = 0
	}
	if maxDecimals > math.MaxInt32 {
		maxDecimals = math.MaxInt32
	}
	num := decimal.NewFromBigInt(r.Num(), 0)
	den := decimal.NewFromBigInt(r.Denom(), 0)
	return num.DivRound(den, int32(maxDecimals)).String()
}

// FormatExact renders r without loss when it has a finite decimal expansion,
// that is when its denominator is of the form 2^a*5^b. Other values are
// rounded as by Format with fallback decimals.
func FormatExact(r *big.Rat, fallback int) string {
	if r == nil {
		return "0"
	}
	if n, ok := terminatingDigits(r.Denom()); ok {
		return Format(r, n)
	}
	return Format(r, fallback)
}

// terminatingDigits reports the number of decimals needed to write 1/den
// exactly, and false if 1/den does not terminate.
func terminatingDigits(den *big.Int) (int, bool) {
	d := new(big.Int).Set(den)
	twos := int(d.TrailingZeroBits())
	d.Rsh(d, uint(twos))

	fives := 0
	five := big.NewInt(5)
	q, m := new(big.Int), new(big.Int)
	for {
		q.QuoRem(d, five, m)
		if m.Sign() != 0 {
			break
		}
		d.Set(q)
		fives++
	}
	if d.Cmp(big.NewInt(1)) != 0 {
		return 0, false
	}
	return max(twos, fives), true
}

// Clone returns an independent copy of r. A nil r clones to zero.
func Clone(r *big.Rat) *big.Rat {
	if r == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(r)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
