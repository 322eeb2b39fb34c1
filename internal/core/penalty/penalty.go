// Package penalty computes the payout/penalty split of an early withdrawal.
//
// The set of accepted penalty rates is data supplied by the deployment: either a
// single fixed rate or a closed range. Arithmetic is integer-only and exact:
// payout + penalty always equals the principal.
package penalty

import (
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/LeJamon/goVaultd/internal/core/amount"
)

// ErrInvalidPenalty is returned when a rate is outside the configured allowed set.
var ErrInvalidPenalty = errors.New("invalid penalty")

// Mode selects how a Policy's allowed set was declared.
type Mode string

const (
	ModeFixed Mode = "fixed"
	ModeRange Mode = "range"
)

// Policy is the allowed set of penalty percentages.
type Policy struct {
	mode    Mode
	allowed []uint32
}

// Fixed returns a policy that only accepts percent.
func Fixed(percent uint32) (Policy, error) {
	if percent == 0 || percent >= 100 {
		return Policy{}, fmt.Errorf("%w: fixed rate %d must be in [1,99]", ErrInvalidPenalty, percent)
	}
	return Policy{mode: ModeFixed, allowed: []uint32{percent}}, nil
}

// Range returns a policy accepting every integer in [min, max].
func Range(min, max uint32) (Policy, error) {
	if min == 0 || max >= 100 || min > max {
		return Policy{}, fmt.Errorf("%w: range [%d,%d] must satisfy 1 <= min <= max <= 99", ErrInvalidPenalty, min, max)
	}
	allowed := make([]uint32, 0, max-min+1)
	for p := min; p <= max; p++ {
		allowed = append(allowed, p)
	}
	return Policy{mode: ModeRange, allowed: allowed}, nil
}

// Mode reports whether the policy is fixed or ranged.
func (p Policy) Mode() Mode {
	return p.mode
}

// Allowed returns a copy of the accepted rates in ascending order.
func (p Policy) Allowed() []uint32 {
	return slices.Clone(p.allowed)
}

// Default returns the rate a caller should use when none was chosen: the fixed
// rate, or the lowest rate of a range.
func (p Policy) Default() uint32 {
	if len(p.allowed) == 0 {
		return 0
	}
	return p.allowed[0]
}

// Allows reports whether percent is in the allowed set.
func (p Policy) Allows(percent uint32) bool {
	_, found := slices.BinarySearch(p.allowed, percent)
	return found
}

// Check returns ErrInvalidPenalty when percent is not allowed.
func (p Policy) Check(percent uint32) error {
	if len(p.allowed) == 0 {
		return fmt.Errorf("%w: no penalty policy configured", ErrInvalidPenalty)
	}
	if !p.Allows(percent) {
		return fmt.Errorf("%w: %d%% is not one of %v", ErrInvalidPenalty, percent, p.allowed)
	}
	return nil
}

func (p Policy) String() string {
	switch {
	case len(p.allowed) == 0:
		return "none"
	case p.mode == ModeFixed:
		return fmt.Sprintf("fixed %d%%", p.allowed[0])
	default:
		return fmt.Sprintf("%d-%d%%", p.allowed[0], p.allowed[len(p.allowed)-1])
	}
}

// Quote is the early-withdrawal split of a principal.
type Quote struct {
	Payout  amount.Amount `json:"payout"`
	Penalty amount.Amount `json:"penalty"`
}

// Total returns payout + penalty, which equals the quoted principal.
func (q Quote) Total() amount.Amount {
	return q.Payout.Add(q.Penalty)
}

// Calculator quotes early withdrawals under a Policy.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Policy returns the calculator's allowed set.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Quote computes penalty = floor(principal * percent / 100) and payout = principal - penalty.
func (c *Calculator) Quote(principal amount.Amount, percent uint32) (Quote, error) {
	if err := c.policy.Check(percent); err != nil {
		return Quote{}, err
	}
	if !principal.IsPositive() {
		return Quote{}, fmt.Errorf("%w: principal %s must be positive", amount.ErrInvalidAmount, principal)
	}
	return Split(principal, percent), nil
}

// Split performs the arithmetic without a policy check. The product is taken in
// big.Int so principals near the int64 limit cannot overflow.
func Split(principal amount.Amount, percent uint32) Quote {
	prod := new(big.Int).Mul(big.NewInt(principal.Units()), big.NewInt(int64(percent)))
	prod.Quo(prod, big.NewInt(100))
	penalty := amount.Amount(prod.Int64())
	return Quote{Payout: principal.Sub(penalty), Penalty: penalty}
}
