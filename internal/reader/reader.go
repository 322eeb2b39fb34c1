// Package reader implements the vault read path: single lookups, the vault
// count, and enumeration of the vaults an account owns.
package reader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/core/vault"
	"github.com/LeJamon/goVaultd/internal/scval"
)

// Caller runs read-only contract functions. *tx.Pipeline implements it.
type Caller interface {
	Call(ctx context.Context, source, function string, args ...scval.Value) (scval.Value, error)
}

// sharedCallTimeout bounds a ledger read that several callers wait on.
const sharedCallTimeout = 30 * time.Second

// Reader fetches vault records from the ledger. Records are cached; only
// their active flag can go stale, and Refresh re-reads it.
type Reader struct {
	caller Caller
	source string
	cache  *VaultCache
	group  singleflight.Group
	logger *slog.Logger
}

// New creates a reader that simulates reads as source.
func New(caller Caller, source string, cacheSize int) (*Reader, error) {
	cache, err := NewVaultCache(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Reader{
		caller: caller,
		source: source,
		cache:  cache,
		logger: slog.Default().With("component", "reader"),
	}, nil
}

// Cache exposes the record cache.
func (r *Reader) Cache() *VaultCache {
	return r.cache
}

// GetVault returns vault id. A vault that does not exist is reported with
// found == false and no error.
func (r *Reader) GetVault(ctx context.Context, id vault.ID) (v vault.Vault, found bool, err error) {
	if v, ok := r.cache.Get(id); ok {
		return v, true, nil
	}
	return r.Refresh(ctx, id)
}

type fetched struct {
	v     vault.Vault
	found bool
}

// Refresh reads vault id from the ledger, bypassing and then updating the
// cache. Concurrent refreshes of one id share a single ledger call, which
// outlives the cancellation of any one caller.
func (r *Reader) Refresh(ctx context.Context, id vault.ID) (vault.Vault, bool, error) {
	ch := r.group.DoChan(id.String(), func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		val, err := r.caller.Call(callCtx, r.source, tx.FnGetVault, scval.U64(uint64(id)))
		if err != nil {
			return nil, err
		}
		v, found, err := scval.ToOptionalVault(id, val)
		if err != nil {
			return nil, fmt.Errorf("decode vault %s: %w", id, err)
		}
		if found {
			r.cache.Put(v)
		} else {
			r.cache.Remove(id)
		}
		return fetched{v: v, found: found}, nil
	})
	select {
	case <-ctx.Done():
		return vault.Vault{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return vault.Vault{}, false, res.Err
		}
		f := res.Val.(fetched)
		return f.v, f.found, nil
	}
}

// Count returns the number of vaults ever created.
func (r *Reader) Count(ctx context.Context) (uint64, error) {
	val, err := r.caller.Call(ctx, r.source, tx.FnGetVaultCount)
	if err != nil {
		return 0, err
	}
	n, err := val.AsU64()
	if err != nil {
		return 0, fmt.Errorf("decode vault count: %w", err)
	}
	return n, nil
}

// ListOwned scans ids 1..count and returns the vaults owned by owner in id
// order. Records that fail to load are logged and skipped.
func (r *Reader) ListOwned(ctx context.Context, owner string) ([]vault.Vault, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}

	var owned []vault.Vault
	for id := vault.ID(1); uint64(id) <= count; id++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, found, err := r.GetVault(ctx, id)
		if err != nil {
			r.logger.Warn("skipping vault", "vault_id", id, "error", err)
			continue
		}
		if !found {
			r.logger.Warn("skipping vault", "vault_id", id, "error", "not found")
			continue
		}
		if v.Owner == owner {
			owned = append(owned, v)
		}
	}
	return owned, nil
}
