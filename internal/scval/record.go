package scval

import (
	"fmt"

	"github.com/LeJamon/goVaultd/internal/core/vault"
)

// FromVault encodes a vault record as the contract's Vault struct.
func FromVault(v vault.Vault) Value {
	return Struct(map[string]Value{
		"owner":       Address(v.Owner),
		"amount":      I128(v.Amount),
		"created_at":  U64(v.CreatedAt),
		"unlock_time": U64(v.UnlockTime),
		"is_active":   Bool(v.Active),
	})
}

// ToVault decodes the contract's Vault struct. The id is not part of the
// record and must be supplied by the caller.
func ToVault(id vault.ID, v Value) (vault.Vault, error) {
	fields, err := v.AsStruct()
	if err != nil {
		return vault.Vault{}, err
	}
	get := func(name string) (Value, error) {
		f, ok := fields[name]
		if !ok {
			return Value{}, fmt.Errorf("vault record: missing field %q", name)
		}
		return f, nil
	}

	out := vault.Vault{ID: id}
	f, err := get("owner")
	if err != nil {
		return vault.Vault{}, err
	}
	if out.Owner, err = f.AsAddress(); err != nil {
		return vault.Vault{}, fmt.Errorf("vault record owner: %w", err)
	}
	if f, err = get("amount"); err != nil {
		return vault.Vault{}, err
	}
	if out.Amount, err = f.AsI128(); err != nil {
		return vault.Vault{}, fmt.Errorf("vault record amount: %w", err)
	}
	if f, err = get("created_at"); err != nil {
		return vault.Vault{}, err
	}
	if out.CreatedAt, err = f.AsU64(); err != nil {
		return vault.Vault{}, fmt.Errorf("vault record created_at: %w", err)
	}
	if f, err = get("unlock_time"); err != nil {
		return vault.Vault{}, err
	}
	if out.UnlockTime, err = f.AsU64(); err != nil {
		return vault.Vault{}, fmt.Errorf("vault record unlock_time: %w", err)
	}
	if f, err = get("is_active"); err != nil {
		return vault.Vault{}, err
	}
	if out.Active, err = f.AsBool(); err != nil {
		return vault.Vault{}, fmt.Errorf("vault record is_active: %w", err)
	}
	return out, nil
}

// ToOptionalVault decodes an Option<Vault>. found is false when the ledger
// has no record for the id.
func ToOptionalVault(id vault.ID, v Value) (rec vault.Vault, found bool, err error) {
	inner, ok, err := v.AsOption()
	if err != nil || !ok {
		return vault.Vault{}, false, err
	}
	rec, err = ToVault(id, inner)
	if err != nil {
		return vault.Vault{}, false, err
	}
	return rec, true, nil
}
