// Package client is the vault facade: it validates user actions locally,
// runs writes through the transaction pipeline and serves reads from the
// vault reader.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LeJamon/goVaultd/internal/core/amount"
	"github.com/LeJamon/goVaultd/internal/core/penalty"
	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/core/vault"
	"github.com/LeJamon/goVaultd/internal/reader"
)

// Options configures a VaultClient.
type Options struct {
	Tx     tx.Config
	Policy penalty.Policy

	// CacheSize bounds the vault record cache.
	CacheSize int

	// ReadAccount is the source of read-only simulations. Defaults to the
	// contract id.
	ReadAccount string

	// Owner is the account the signer signs for. When set, withdrawals of
	// vaults it does not own fail with ErrUnauthorized before submission.
	Owner string
}

// CreateResult describes a newly created vault.
type CreateResult struct {
	VaultID vault.ID
	Hash    string
}

// WithdrawResult is the outcome of a full or early withdrawal. Penalty is
// zero for a full withdrawal.
type WithdrawResult struct {
	VaultID vault.ID
	Payout  amount.Amount
	Penalty amount.Amount
	Hash    string
}

// VaultClient exposes the user-facing vault operations.
type VaultClient struct {
	rpc      tx.LedgerRPC
	pipeline *tx.Pipeline
	reader   *reader.Reader
	calc     *penalty.Calculator
	locks    *vaultLocks
	owner    string
	logger   *slog.Logger
}

// New wires a client to a ledger endpoint. signer may be nil for read-only use.
func New(rpc tx.LedgerRPC, signer tx.Signer, opts Options) (*VaultClient, error) {
	if opts.Tx.Contract == "" || opts.Tx.Network == "" {
		return nil, fmt.Errorf("client: contract and network are required")
	}
	if opts.ReadAccount == "" {
		opts.ReadAccount = opts.Tx.Contract
	}
	if len(opts.Policy.Allowed()) == 0 {
		return nil, fmt.Errorf("client: %w: no penalty policy configured", vault.ErrInvalidPenalty)
	}

	pipeline := tx.NewPipeline(opts.Tx, rpc, signer)
	r, err := reader.New(pipeline, opts.ReadAccount, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &VaultClient{
		rpc:      rpc,
		pipeline: pipeline,
		reader:   r,
		calc:     penalty.NewCalculator(opts.Policy),
		locks:    newVaultLocks(),
		owner:    opts.Owner,
		logger:   slog.Default().With("component", "client"),
	}, nil
}

// Policy returns the penalty policy early withdrawals are checked against.
func (c *VaultClient) Policy() penalty.Policy {
	return c.calc.Policy()
}

// Reader exposes the read path.
func (c *VaultClient) Reader() *reader.Reader {
	return c.reader
}

// now returns the close time of the latest ledger, the clock the contract
// checks maturity against.
func (c *VaultClient) now(ctx context.Context) (uint64, error) {
	latest, err := c.rpc.GetLatestLedger(ctx)
	if err != nil {
		return 0, fmt.Errorf("latest ledger: %w", err)
	}
	return latest.CloseTime, nil
}

// CreateVault locks amt for lockDays on behalf of owner and returns the new id.
func (c *VaultClient) CreateVault(ctx context.Context, owner string, amt amount.Amount, lockDays uint64) (*CreateResult, error) {
	if err := vault.ValidateCreate(amt, lockDays); err != nil {
		return nil, err
	}

	res, err := c.pipeline.Run(ctx, tx.CreateVault{Owner: owner, Amount: amt, LockDays: lockDays})
	if err != nil {
		return nil, err
	}
	c.logger.Info("vault created", "vault_id", res.VaultID, "owner", owner, "amount", amt, "hash", res.Hash)
	return &CreateResult{VaultID: res.VaultID, Hash: res.Hash}, nil
}

// Withdraw releases a matured vault in full and returns the payout.
func (c *VaultClient) Withdraw(ctx context.Context, id vault.ID) (*WithdrawResult, error) {
	release, err := c.locks.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	v, err := c.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	now, err := c.now(ctx)
	if err != nil {
		return nil, err
	}
	if err := vault.ValidateWithdraw(v, now); err != nil {
		return nil, err
	}

	res, err := c.pipeline.Run(ctx, tx.Withdraw{Owner: v.Owner, VaultID: id})
	if err != nil {
		return nil, err
	}
	c.reader.Cache().MarkInactive(id)
	c.logger.Info("vault withdrawn", "vault_id", id, "payout", res.Payout, "hash", res.Hash)
	return &WithdrawResult{VaultID: id, Payout: res.Payout, Hash: res.Hash}, nil
}

// EarlyWithdraw releases a vault before maturity at penaltyPercent.
func (c *VaultClient) EarlyWithdraw(ctx context.Context, id vault.ID, penaltyPercent uint32) (*WithdrawResult, error) {
	if err := c.calc.Policy().Check(penaltyPercent); err != nil {
		return nil, err
	}

	release, err := c.locks.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	v, err := c.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	now, err := c.now(ctx)
	if err != nil {
		return nil, err
	}
	quote, err := vault.ValidateEarlyWithdraw(v, now, penaltyPercent, c.calc)
	if err != nil {
		return nil, err
	}

	res, err := c.pipeline.Run(ctx, tx.EarlyWithdraw{Owner: v.Owner, VaultID: id, PenaltyPercent: penaltyPercent})
	if err != nil {
		return nil, err
	}
	c.reader.Cache().MarkInactive(id)
	if res.Payout != quote.Payout || res.Penalty != quote.Penalty {
		c.logger.Warn("ledger split differs from local quote", "vault_id", id,
			"payout", res.Payout, "expected_payout", quote.Payout)
	}
	c.logger.Info("vault withdrawn early", "vault_id", id, "payout", res.Payout, "penalty", res.Penalty, "hash", res.Hash)
	return &WithdrawResult{VaultID: id, Payout: res.Payout, Penalty: res.Penalty, Hash: res.Hash}, nil
}

// ListVaults returns every vault owned by owner.
func (c *VaultClient) ListVaults(ctx context.Context, owner string) ([]vault.Vault, error) {
	return c.reader.ListOwned(ctx, owner)
}

// GetVault returns vault id, or ErrVaultNotFound.
func (c *VaultClient) GetVault(ctx context.Context, id vault.ID) (vault.Vault, error) {
	v, found, err := c.reader.GetVault(ctx, id)
	if err != nil {
		return vault.Vault{}, err
	}
	if !found {
		return vault.Vault{}, fmt.Errorf("%w: %s", vault.ErrVaultNotFound, id)
	}
	return v, nil
}

// VaultCount returns the number of vaults ever created.
func (c *VaultClient) VaultCount(ctx context.Context) (uint64, error) {
	return c.reader.Count(ctx)
}

// Quote previews an early withdrawal of vault id without submitting anything.
func (c *VaultClient) Quote(ctx context.Context, id vault.ID, penaltyPercent uint32) (penalty.Quote, error) {
	v, err := c.GetVault(ctx, id)
	if err != nil {
		return penalty.Quote{}, err
	}
	return c.calc.Quote(v.Amount, penaltyPercent)
}

// loadOwned is load plus the owner check when the client knows its signer.
func (c *VaultClient) loadOwned(ctx context.Context, id vault.ID) (vault.Vault, error) {
	v, err := c.load(ctx, id)
	if err != nil {
		return vault.Vault{}, err
	}
	if c.owner != "" {
		if err := vault.ValidateOwner(v, c.owner); err != nil {
			return vault.Vault{}, err
		}
	}
	return v, nil
}

// load reads the current record of id from the ledger for a write.
func (c *VaultClient) load(ctx context.Context, id vault.ID) (vault.Vault, error) {
	v, found, err := c.reader.Refresh(ctx, id)
	if err != nil {
		return vault.Vault{}, err
	}
	if !found {
		return vault.Vault{}, fmt.Errorf("%w: %s", vault.ErrVaultNotFound, id)
	}
	return v, nil
}
