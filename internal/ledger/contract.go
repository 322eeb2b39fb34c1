package ledger

import (
	"errors"
	"fmt"

	binarycodec "github.com/LeJamon/goVaultd/internal/codec/binary-codec"
	"github.com/LeJamon/goVaultd/internal/core/penalty"
	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/core/vault"
	"github.com/LeJamon/goVaultd/internal/scval"
)

// Contract failure messages. Clients match on these strings.
const (
	MsgAlreadyInitialized = "Contract already initialized"
	MsgAmountNotPositive  = "Amount must be positive"
	MsgInvalidDuration    = "Lock duration must be between 7 and 365 days"
	MsgVaultNotFound      = "Vault not found"
	MsgAlreadyWithdrawn   = "Vault already withdrawn"
	MsgStillLocked        = "Vault still locked"
	MsgInvalidPenalty     = "Penalty must be between 5 and 10 percent"
	MsgUnauthorized       = "Unauthorized: missing owner signature"
)

// Penalty bounds enforced by the contract itself.
const (
	MinPenaltyPercent = 5
	MaxPenaltyPercent = 10
)

const (
	keyConfig = "config"
	keyCount  = "count"
)

// ContractError is a business rule rejection raised by the contract. The
// invocation's writes are discarded.
type ContractError struct {
	Msg string
}

func (e *ContractError) Error() string { return e.Msg }

func fail(msg string) error { return &ContractError{Msg: msg} }

// host is the contract's view of ledger state and the invocation context.
type host interface {
	get(key string) ([]byte, bool, error)
	put(key string, value []byte) error
	requireAuth(addr string) error
	now() uint64
}

type contractConfig struct {
	Admin string `codec:"admin"`
	Token string `codec:"token"`
}

// writes reports whether function mutates contract storage.
func writes(function string) bool {
	switch function {
	case tx.FnGetVault, tx.FnGetVaultCount:
		return false
	default:
		return true
	}
}

// invoke dispatches one contract call.
func invoke(h host, function string, args []scval.Value) (scval.Value, error) {
	switch function {
	case tx.FnInitialize:
		return initialize(h, args)
	case tx.FnCreateVault:
		return createVault(h, args)
	case tx.FnGetVault:
		return getVault(h, args)
	case tx.FnWithdraw:
		return withdraw(h, args)
	case tx.FnEarlyWithdraw:
		return earlyWithdraw(h, args)
	case tx.FnGetVaultCount:
		return getVaultCount(h, args)
	default:
		return scval.Value{}, fail(fmt.Sprintf("unknown function %q", function))
	}
}

func argCount(args []scval.Value, n int) error {
	if len(args) != n {
		return fail(fmt.Sprintf("expected %d arguments, got %d", n, len(args)))
	}
	return nil
}

func badArg(name string, err error) error {
	return fail(fmt.Sprintf("invalid argument %s: %v", name, err))
}

func initialize(h host, args []scval.Value) (scval.Value, error) {
	if err := argCount(args, 2); err != nil {
		return scval.Value{}, err
	}
	admin, err := args[0].AsAddress()
	if err != nil {
		return scval.Value{}, badArg("admin", err)
	}
	token, err := args[1].AsAddress()
	if err != nil {
		return scval.Value{}, badArg("token", err)
	}
	if _, ok, err := h.get(keyConfig); err != nil {
		return scval.Value{}, err
	} else if ok {
		return scval.Value{}, fail(MsgAlreadyInitialized)
	}
	if err := h.requireAuth(admin); err != nil {
		return scval.Value{}, err
	}
	raw, err := binarycodec.Encode(contractConfig{Admin: admin, Token: token})
	if err != nil {
		return scval.Value{}, err
	}
	return scval.Void(), h.put(keyConfig, raw)
}

func createVault(h host, args []scval.Value) (scval.Value, error) {
	if err := argCount(args, 3); err != nil {
		return scval.Value{}, err
	}
	owner, err := args[0].AsAddress()
	if err != nil {
		return scval.Value{}, badArg("owner", err)
	}
	amt, err := args[1].AsI128()
	if err != nil {
		return scval.Value{}, badArg("amount", err)
	}
	days, err := args[2].AsU64()
	if err != nil {
		return scval.Value{}, badArg("lock_duration_days", err)
	}

	if err := h.requireAuth(owner); err != nil {
		return scval.Value{}, err
	}
	if amt <= 0 {
		return scval.Value{}, fail(MsgAmountNotPositive)
	}
	if days < vault.MinLockDays || days > vault.MaxLockDays {
		return scval.Value{}, fail(MsgInvalidDuration)
	}

	count, err := loadCount(h)
	if err != nil {
		return scval.Value{}, err
	}
	now := h.now()
	v := vault.Vault{
		ID:         vault.ID(count + 1),
		Owner:      owner,
		Amount:     amt,
		CreatedAt:  now,
		UnlockTime: vault.UnlockTimeFor(now, days),
		Active:     true,
	}
	if err := storeVault(h, v); err != nil {
		return scval.Value{}, err
	}
	if err := storeCount(h, uint64(v.ID)); err != nil {
		return scval.Value{}, err
	}
	return scval.U64(uint64(v.ID)), nil
}

func getVault(h host, args []scval.Value) (scval.Value, error) {
	if err := argCount(args, 1); err != nil {
		return scval.Value{}, err
	}
	id, err := args[0].AsU64()
	if err != nil {
		return scval.Value{}, badArg("vault_id", err)
	}
	v, ok, err := loadVault(h, vault.ID(id))
	if err != nil {
		return scval.Value{}, err
	}
	if !ok {
		return scval.None(), nil
	}
	return scval.Some(scval.FromVault(v)), nil
}

// ownedActiveVault loads a vault for a withdrawal in the contract's order:
// existence, owner authorization, then activity.
func ownedActiveVault(h host, arg scval.Value) (vault.Vault, error) {
	id, err := arg.AsU64()
	if err != nil {
		return vault.Vault{}, badArg("vault_id", err)
	}
	v, ok, err := loadVault(h, vault.ID(id))
	if err != nil {
		return vault.Vault{}, err
	}
	if !ok {
		return vault.Vault{}, fail(MsgVaultNotFound)
	}
	if err := h.requireAuth(v.Owner); err != nil {
		return vault.Vault{}, err
	}
	if !v.Active {
		return vault.Vault{}, fail(MsgAlreadyWithdrawn)
	}
	return v, nil
}

func withdraw(h host, args []scval.Value) (scval.Value, error) {
	if err := argCount(args, 1); err != nil {
		return scval.Value{}, err
	}
	v, err := ownedActiveVault(h, args[0])
	if err != nil {
		return scval.Value{}, err
	}
	if h.now() < v.UnlockTime {
		return scval.Value{}, fail(MsgStillLocked)
	}
	v.Active = false
	if err := storeVault(h, v); err != nil {
		return scval.Value{}, err
	}
	return scval.I128(v.Amount), nil
}

func earlyWithdraw(h host, args []scval.Value) (scval.Value, error) {
	if err := argCount(args, 2); err != nil {
		return scval.Value{}, err
	}
	v, err := ownedActiveVault(h, args[0])
	if err != nil {
		return scval.Value{}, err
	}
	pct, err := args[1].AsU32()
	if err != nil {
		return scval.Value{}, badArg("penalty_percent", err)
	}
	if pct < MinPenaltyPercent || pct > MaxPenaltyPercent {
		return scval.Value{}, fail(MsgInvalidPenalty)
	}

	split := penalty.Split(v.Amount, pct)

	v.Active = false
	if err := storeVault(h, v); err != nil {
		return scval.Value{}, err
	}
	return scval.Vec(scval.I128(split.Payout), scval.I128(split.Penalty)), nil
}

func getVaultCount(h host, args []scval.Value) (scval.Value, error) {
	if err := argCount(args, 0); err != nil {
		return scval.Value{}, err
	}
	count, err := loadCount(h)
	if err != nil {
		return scval.Value{}, err
	}
	return scval.U64(count), nil
}

func vaultKey(id vault.ID) string {
	return fmt.Sprintf("vault/%020d", uint64(id))
}

func loadCount(h host) (uint64, error) {
	raw, ok, err := h.get(keyCount)
	if err != nil || !ok {
		return 0, err
	}
	var n uint64
	if err := binarycodec.Decode(raw, &n); err != nil {
		return 0, fmt.Errorf("decode vault count: %w", err)
	}
	return n, nil
}

func storeCount(h host, n uint64) error {
	raw, err := binarycodec.Encode(n)
	if err != nil {
		return err
	}
	return h.put(keyCount, raw)
}

func loadVault(h host, id vault.ID) (vault.Vault, bool, error) {
	raw, ok, err := h.get(vaultKey(id))
	if err != nil || !ok {
		return vault.Vault{}, false, err
	}
	var val scval.Value
	if err := binarycodec.Decode(raw, &val); err != nil {
		return vault.Vault{}, false, fmt.Errorf("decode vault %d: %w", id, err)
	}
	v, err := scval.ToVault(id, val)
	if err != nil {
		return vault.Vault{}, false, err
	}
	return v, true, nil
}

func storeVault(h host, v vault.Vault) error {
	raw, err := binarycodec.Encode(scval.FromVault(v))
	if err != nil {
		return err
	}
	return h.put(vaultKey(v.ID), raw)
}

// isContractError reports whether err is a contract rejection rather than
// a host failure.
func isContractError(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}
