package tx

import (
	"fmt"

	"github.com/LeJamon/goVaultd/internal/core/amount"
	"github.com/LeJamon/goVaultd/internal/core/vault"
	"github.com/LeJamon/goVaultd/internal/scval"
)

// Contract function names.
const (
	FnInitialize    = "initialize"
	FnCreateVault   = "create_vault"
	FnGetVault      = "get_vault"
	FnWithdraw      = "withdraw"
	FnEarlyWithdraw = "early_withdraw"
	FnGetVaultCount = "get_vault_count"
)

// Intent is a user action waiting to become a transaction. The set of intents
// is closed: CreateVault, Withdraw and EarlyWithdraw.
type Intent interface {
	// Source is the account that signs and pays for the transaction.
	Source() string
	Function() string
	Args() []scval.Value
	decode(v scval.Value, res *Result) error
}

// Result is the decoded outcome of a confirmed transaction. Only the fields
// for the intent's kind are set.
type Result struct {
	Hash    string
	Ledger  uint32
	Value   scval.Value
	VaultID vault.ID
	Payout  amount.Amount
	Penalty amount.Amount
}

// CreateVault locks Amount for LockDays.
type CreateVault struct {
	Owner    string
	Amount   amount.Amount
	LockDays uint64
}

func (c CreateVault) Source() string   { return c.Owner }
func (c CreateVault) Function() string { return FnCreateVault }

func (c CreateVault) Args() []scval.Value {
	return []scval.Value{scval.Address(c.Owner), scval.I128(c.Amount), scval.U64(c.LockDays)}
}

func (c CreateVault) decode(v scval.Value, res *Result) error {
	id, err := v.AsU64()
	if err != nil {
		return fmt.Errorf("decode vault id: %w", err)
	}
	res.VaultID = vault.ID(id)
	return nil
}

// Withdraw releases a matured vault in full.
type Withdraw struct {
	Owner   string
	VaultID vault.ID
}

func (w Withdraw) Source() string   { return w.Owner }
func (w Withdraw) Function() string { return FnWithdraw }

func (w Withdraw) Args() []scval.Value {
	return []scval.Value{scval.U64(uint64(w.VaultID))}
}

func (w Withdraw) decode(v scval.Value, res *Result) error {
	payout, err := v.AsI128()
	if err != nil {
		return fmt.Errorf("decode payout: %w", err)
	}
	res.Payout = payout
	return nil
}

// EarlyWithdraw releases a vault before maturity, forfeiting PenaltyPercent.
type EarlyWithdraw struct {
	Owner          string
	VaultID        vault.ID
	PenaltyPercent uint32
}

func (e EarlyWithdraw) Source() string   { return e.Owner }
func (e EarlyWithdraw) Function() string { return FnEarlyWithdraw }

func (e EarlyWithdraw) Args() []scval.Value {
	return []scval.Value{scval.U64(uint64(e.VaultID)), scval.U32(e.PenaltyPercent)}
}

func (e EarlyWithdraw) decode(v scval.Value, res *Result) error {
	pair, err := v.AsTuple(2)
	if err != nil {
		return fmt.Errorf("decode payout pair: %w", err)
	}
	if res.Payout, err = pair[0].AsI128(); err != nil {
		return fmt.Errorf("decode payout: %w", err)
	}
	if res.Penalty, err = pair[1].AsI128(); err != nil {
		return fmt.Errorf("decode penalty: %w", err)
	}
	return nil
}
