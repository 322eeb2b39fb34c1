package vault

import (
	"fmt"

	"github.com/LeJamon/goVaultd/internal/core/amount"
	"github.com/LeJamon/goVaultd/internal/core/penalty"
)

// The checks below run before any network access. They only save a round trip;
// the ledger enforces every rule again on its own.

// ValidateCreate checks the arguments of a new vault.
func ValidateCreate(amt amount.Amount, lockDays uint64) error {
	if !amt.IsPositive() {
		return fmt.Errorf("%w: %s base units, must be positive", ErrInvalidAmount, amt)
	}
	if lockDays < MinLockDays || lockDays > MaxLockDays {
		return fmt.Errorf("%w: %d days, must be between %d and %d", ErrInvalidDuration, lockDays, MinLockDays, MaxLockDays)
	}
	return nil
}

// ValidateWithdraw checks that v can be withdrawn in full at now.
func ValidateWithdraw(v Vault, now uint64) error {
	if !v.Active {
		return fmt.Errorf("%w: vault %s", ErrVaultInactive, v.ID)
	}
	if !v.IsUnlocked(now) {
		return fmt.Errorf("%w: vault %s unlocks at %d (%s)", ErrStillLocked, v.ID, v.UnlockTime, FormatRemaining(v.Remaining(now)))
	}
	return nil
}

// ValidateEarlyWithdraw checks that v can be withdrawn early at now and
// returns the quote the ledger is expected to pay out.
func ValidateEarlyWithdraw(v Vault, now uint64, percent uint32, calc *penalty.Calculator) (penalty.Quote, error) {
	if !v.Active {
		return penalty.Quote{}, fmt.Errorf("%w: vault %s", ErrVaultInactive, v.ID)
	}
	if v.IsUnlocked(now) {
		return penalty.Quote{}, fmt.Errorf("%w: vault %s matured at %d, use a full withdrawal", ErrAlreadyUnlocked, v.ID, v.UnlockTime)
	}
	q, err := calc.Quote(v.Amount, percent)
	if err != nil {
		return penalty.Quote{}, err
	}
	return q, nil
}

// ValidateOwner checks that owner created v.
func ValidateOwner(v Vault, owner string) error {
	if v.Owner != owner {
		return fmt.Errorf("%w: vault %s belongs to %s", ErrUnauthorized, v.ID, v.Owner)
	}
	return nil
}
