package vault

import (
	"fmt"
	"time"

	"github.com/LeJamon/goVaultd/internal/core/amount"
)

const (
	// SecondsPerDay converts lock durations to unlock times.
	SecondsPerDay = 86400

	MinLockDays = 7
	MaxLockDays = 365
)

// ID identifies a vault. Ids start at 1, increase monotonically, and are never reused.
type ID uint64

func (id ID) String() string {
	return fmt.Sprintf("%d", uint64(id))
}

// Vault is the client's copy of a ledger vault record. Only Active ever changes
// after creation, and only from true to false.
type Vault struct {
	ID         ID            `json:"id"`
	Owner      string        `json:"owner"`
	Amount     amount.Amount `json:"amount"`
	CreatedAt  uint64        `json:"created_at"`
	UnlockTime uint64        `json:"unlock_time"`
	Active     bool          `json:"is_active"`
}

// UnlockTimeFor returns createdAt + days*86400.
func UnlockTimeFor(createdAt, days uint64) uint64 {
	return createdAt + days*SecondsPerDay
}

// LockDays returns the lock duration the vault was created with.
func (v Vault) LockDays() uint64 {
	return (v.UnlockTime - v.CreatedAt) / SecondsPerDay
}

// IsUnlocked reports whether the vault has matured at now (unix seconds).
func (v Vault) IsUnlocked(now uint64) bool {
	return now >= v.UnlockTime
}

// Remaining returns the time left until maturity, zero once unlocked.
func (v Vault) Remaining(now uint64) time.Duration {
	if v.IsUnlocked(now) {
		return 0
	}
	return time.Duration(v.UnlockTime-now) * time.Second
}

// SameRecord reports whether two reads describe the same immutable vault.
func (v Vault) SameRecord(other Vault) bool {
	return v.ID == other.ID &&
		v.Owner == other.Owner &&
		v.Amount == other.Amount &&
		v.CreatedAt == other.CreatedAt &&
		v.UnlockTime == other.UnlockTime
}

// FormatRemaining renders a countdown the way vault listings show it.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "Unlocked"
	}
	secs := int64(d / time.Second)
	days := secs / SecondsPerDay
	hours := (secs % SecondsPerDay) / 3600
	if days > 0 {
		return fmt.Sprintf("%dd %dh remaining", days, hours)
	}
	return fmt.Sprintf("%dh remaining", hours)
}
