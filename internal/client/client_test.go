package client_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goVaultd/internal/client"
	"github.com/LeJamon/goVaultd/internal/core/amount"
	"github.com/LeJamon/goVaultd/internal/core/penalty"
	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/core/tx/mocks"
	"github.com/LeJamon/goVaultd/internal/core/vault"
	"github.com/LeJamon/goVaultd/internal/keys"
	"github.com/LeJamon/goVaultd/internal/ledger"
	"github.com/LeJamon/goVaultd/internal/storage/database/pebble"
)

const (
	testNetwork  = "Test Vault Network"
	testContract = "CVAULT"
	day          = 24 * time.Hour
)

var genesis = time.Unix(1_700_000_000, 0)

type testNode struct {
	t      *testing.T
	ctx    context.Context
	ledger *ledger.Ledger
	clock  atomic.Int64
}

// newTestNode starts a standalone ledger on a controllable clock that closes
// every few milliseconds.
func newTestNode(t *testing.T) *testNode {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := pebble.NewMemManager()
	t.Cleanup(func() { _ = m.Close() })
	db, err := m.OpenDB("ledger")
	require.NoError(t, err)

	n := &testNode{t: t, ctx: ctx}
	n.clock.Store(genesis.Unix())
	n.ledger, err = ledger.Open(ctx, db, ledger.Config{
		Network:       testNetwork,
		Contract:      testContract,
		BaseFee:       100,
		CloseInterval: 5 * time.Millisecond,
	}, ledger.WithClock(func() time.Time { return time.Unix(n.clock.Load(), 0) }))
	require.NoError(t, err)

	go func() { _ = n.ledger.Run(ctx) }()
	return n
}

// advance moves ledger time forward and closes a ledger at the new time.
func (n *testNode) advance(d time.Duration) {
	n.clock.Add(int64(d / time.Second))
	_, err := n.ledger.CloseLedger(n.ctx)
	require.NoError(n.t, err)
}

func (n *testNode) now() uint64 {
	latest, err := n.ledger.GetLatestLedger(n.ctx)
	require.NoError(n.t, err)
	return latest.CloseTime
}

func testOptions(policy penalty.Policy) client.Options {
	cfg := tx.DefaultConfig(testContract, testNetwork)
	cfg.PollInterval = 5 * time.Millisecond
	cfg.PollAttempts = 200
	return client.Options{Tx: cfg, Policy: policy, CacheSize: 64}
}

func rangePolicy(t *testing.T) penalty.Policy {
	p, err := penalty.Range(5, 10)
	require.NoError(t, err)
	return p
}

func newOwner(t *testing.T) *keys.KeyPair {
	kp, err := keys.Generate(keys.KeyTypeEd25519)
	require.NoError(t, err)
	return kp
}

func newClient(t *testing.T, rpc tx.LedgerRPC, signer tx.Signer, policy penalty.Policy) *client.VaultClient {
	c, err := client.New(rpc, signer, testOptions(policy))
	require.NoError(t, err)
	return c
}

func TestCreateVaultScenario(t *testing.T) {
	node := newTestNode(t)
	owner := newOwner(t)
	c := newClient(t, node.ledger, owner, rangePolicy(t))
	ctx := context.Background()

	created, err := c.CreateVault(ctx, owner.Address(), amount.NewAmount(1000_0000000), 30)
	require.NoError(t, err)
	assert.Equal(t, vault.ID(1), created.VaultID)
	assert.NotEmpty(t, created.Hash)

	v, err := c.GetVault(ctx, created.VaultID)
	require.NoError(t, err)
	assert.Equal(t, owner.Address(), v.Owner)
	assert.Equal(t, amount.NewAmount(1000_0000000), v.Amount)
	assert.Equal(t, v.CreatedAt+2_592_000, v.UnlockTime)
	assert.True(t, v.Active)

	again, err := c.GetVault(ctx, created.VaultID)
	require.NoError(t, err)
	assert.True(t, v.SameRecord(again))

	count, err := c.VaultCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestEarlyWithdrawScenario(t *testing.T) {
	node := newTestNode(t)
	owner := newOwner(t)
	c := newClient(t, node.ledger, owner, rangePolicy(t))
	ctx := context.Background()

	created, err := c.CreateVault(ctx, owner.Address(), amount.NewAmount(1000_0000000), 30)
	require.NoError(t, err)

	quote, err := c.Quote(ctx, created.VaultID, 7)
	require.NoError(t, err)
	assert.Equal(t, amount.NewAmount(930_0000000), quote.Payout)

	res, err := c.EarlyWithdraw(ctx, created.VaultID, 7)
	require.NoError(t, err)
	assert.Equal(t, amount.NewAmount(930_0000000), res.Payout)
	assert.Equal(t, amount.NewAmount(70_0000000), res.Penalty)
	assert.Equal(t, amount.NewAmount(1000_0000000), res.Payout.Add(res.Penalty))

	v, err := c.GetVault(ctx, created.VaultID)
	require.NoError(t, err)
	assert.False(t, v.Active)

	_, err = c.EarlyWithdraw(ctx, created.VaultID, 7)
	assert.ErrorIs(t, err, vault.ErrVaultInactive)
}

func TestWithdrawBeforeUnlock(t *testing.T) {
	node := newTestNode(t)
	owner := newOwner(t)
	c := newClient(t, node.ledger, owner, rangePolicy(t))
	ctx := context.Background()

	created, err := c.CreateVault(ctx, owner.Address(), amount.NewAmount(1000_0000000), 30)
	require.NoError(t, err)

	node.advance(1000 * time.Second)
	_, err = c.Withdraw(ctx, created.VaultID)
	assert.ErrorIs(t, err, vault.ErrStillLocked)

	v, err := c.GetVault(ctx, created.VaultID)
	require.NoError(t, err)
	assert.True(t, v.Active)
}

func TestWithdrawAfterMaturity(t *testing.T) {
	node := newTestNode(t)
	owner := newOwner(t)
	c := newClient(t, node.ledger, owner, rangePolicy(t))
	ctx := context.Background()

	created, err := c.CreateVault(ctx, owner.Address(), amount.NewAmount(25_0000000), 7)
	require.NoError(t, err)

	node.advance(7*day + time.Second)
	_, err = c.EarlyWithdraw(ctx, created.VaultID, 5)
	assert.ErrorIs(t, err, vault.ErrAlreadyUnlocked)

	res, err := c.Withdraw(ctx, created.VaultID)
	require.NoError(t, err)
	assert.Equal(t, amount.NewAmount(25_0000000), res.Payout)
	assert.True(t, res.Penalty.IsZero())

	_, err = c.Withdraw(ctx, created.VaultID)
	assert.ErrorIs(t, err, vault.ErrVaultInactive)
}

func TestWithdrawUnknownVault(t *testing.T) {
	node := newTestNode(t)
	owner := newOwner(t)
	c := newClient(t, node.ledger, owner, rangePolicy(t))

	_, err := c.Withdraw(context.Background(), 9)
	assert.ErrorIs(t, err, vault.ErrVaultNotFound)
}

func TestWithdrawForeignVaultRejectedBySigner(t *testing.T) {
	node := newTestNode(t)
	alice, mallory := newOwner(t), newOwner(t)
	ctx := context.Background()

	created, err := newClient(t, node.ledger, alice, rangePolicy(t)).
		CreateVault(ctx, alice.Address(), amount.NewAmount(10_0000000), 10)
	require.NoError(t, err)

	_, err = newClient(t, node.ledger, mallory, rangePolicy(t)).EarlyWithdraw(ctx, created.VaultID, 5)
	assert.ErrorIs(t, err, vault.ErrSigningRejected)
}

// readOnlyLedger fails the test on any submission.
type readOnlyLedger struct {
	tx.LedgerRPC
	t *testing.T
}

func (r readOnlyLedger) SendTransaction(ctx context.Context, payload string) (*tx.SendResult, error) {
	r.t.Error("unexpected SendTransaction")
	return r.LedgerRPC.SendTransaction(ctx, payload)
}

func TestWithdrawForeignVaultRejectedLocally(t *testing.T) {
	node := newTestNode(t)
	alice, mallory := newOwner(t), newOwner(t)
	ctx := context.Background()

	created, err := newClient(t, node.ledger, alice, rangePolicy(t)).
		CreateVault(ctx, alice.Address(), amount.NewAmount(10_0000000), 10)
	require.NoError(t, err)
	node.advance(11 * day)

	opts := testOptions(rangePolicy(t))
	opts.Owner = mallory.Address()
	c, err := client.New(readOnlyLedger{LedgerRPC: node.ledger, t: t}, mallory, opts)
	require.NoError(t, err)

	_, err = c.Withdraw(ctx, created.VaultID)
	assert.ErrorIs(t, err, vault.ErrUnauthorized)
	_, err = c.EarlyWithdraw(ctx, created.VaultID, 5)
	assert.ErrorIs(t, err, vault.ErrUnauthorized)
	assert.NotErrorIs(t, err, vault.ErrSigningRejected)
}

func TestConcurrentWithdrawalsOnOneVault(t *testing.T) {
	node := newTestNode(t)
	owner := newOwner(t)
	c := newClient(t, node.ledger, owner, rangePolicy(t))
	ctx := context.Background()

	created, err := c.CreateVault(ctx, owner.Address(), amount.NewAmount(100_0000000), 30)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.EarlyWithdraw(ctx, created.VaultID, 5)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, vault.ErrVaultInactive)
	}
	assert.Equal(t, 1, succeeded)
}

func TestListVaults(t *testing.T) {
	node := newTestNode(t)
	alice, bob := newOwner(t), newOwner(t)
	ctx := context.Background()
	ca := newClient(t, node.ledger, alice, rangePolicy(t))
	cb := newClient(t, node.ledger, bob, rangePolicy(t))

	_, err := ca.CreateVault(ctx, alice.Address(), amount.NewAmount(1_0000000), 7)
	require.NoError(t, err)
	_, err = cb.CreateVault(ctx, bob.Address(), amount.NewAmount(2_0000000), 8)
	require.NoError(t, err)
	_, err = ca.CreateVault(ctx, alice.Address(), amount.NewAmount(3_0000000), 9)
	require.NoError(t, err)

	owned, err := ca.ListVaults(ctx, alice.Address())
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, vault.ID(1), owned[0].ID)
	assert.Equal(t, vault.ID(3), owned[1].ID)

	owned, err = ca.ListVaults(ctx, bob.Address())
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.EqualValues(t, 8, owned[0].LockDays())
}

func TestFixedPolicyAcceptsOnlyFixedRate(t *testing.T) {
	node := newTestNode(t)
	owner := newOwner(t)
	fixed, err := penalty.Fixed(7)
	require.NoError(t, err)
	c := newClient(t, node.ledger, owner, fixed)
	ctx := context.Background()

	created, err := c.CreateVault(ctx, owner.Address(), amount.NewAmount(1000_0000000), 30)
	require.NoError(t, err)

	_, err = c.EarlyWithdraw(ctx, created.VaultID, 5)
	assert.ErrorIs(t, err, vault.ErrInvalidPenalty)

	res, err := c.EarlyWithdraw(ctx, created.VaultID, 7)
	require.NoError(t, err)
	assert.Equal(t, amount.NewAmount(70_0000000), res.Penalty)
}

// Local validation failures must never reach the ledger: the mock has no
// expectations, so any call fails the test.
func TestLocalValidationMakesNoCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	rpc := mocks.NewMockLedgerRPC(ctrl)
	owner := newOwner(t)
	c := newClient(t, rpc, owner, rangePolicy(t))
	ctx := context.Background()

	for _, days := range []uint64{0, 6, 366, 1000} {
		_, err := c.CreateVault(ctx, owner.Address(), amount.NewAmount(1), days)
		assert.ErrorIs(t, err, vault.ErrInvalidDuration, "days=%d", days)
	}
	_, err := c.CreateVault(ctx, owner.Address(), amount.NewAmount(0), 30)
	assert.ErrorIs(t, err, vault.ErrInvalidAmount)

	for _, pct := range []uint32{0, 4, 11, 100} {
		_, err := c.EarlyWithdraw(ctx, 1, pct)
		assert.ErrorIs(t, err, vault.ErrInvalidPenalty, "pct=%d", pct)
	}
}

// lostLedger accepts submissions but never reports them.
type lostLedger struct {
	tx.LedgerRPC
}

func (lostLedger) GetTransaction(ctx context.Context, hash string) (*tx.GetResult, error) {
	return &tx.GetResult{Status: tx.StatusNotFound}, nil
}

func TestPollTimeoutLeavesCacheUnchanged(t *testing.T) {
	node := newTestNode(t)
	owner := newOwner(t)
	ctx := context.Background()

	created, err := newClient(t, node.ledger, owner, rangePolicy(t)).
		CreateVault(ctx, owner.Address(), amount.NewAmount(1000_0000000), 30)
	require.NoError(t, err)

	opts := testOptions(rangePolicy(t))
	opts.Tx.PollAttempts = 3
	opts.Tx.PollInterval = time.Millisecond
	c, err := client.New(lostLedger{node.ledger}, owner, opts)
	require.NoError(t, err)

	_, err = c.GetVault(ctx, created.VaultID)
	require.NoError(t, err)

	_, err = c.EarlyWithdraw(ctx, created.VaultID, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrTimeout)
	assert.True(t, vault.IsOutcomeUnknown(err))

	stats := c.Reader().Cache().Stats()
	v, err := c.GetVault(ctx, created.VaultID)
	require.NoError(t, err)
	assert.True(t, v.Active, "cache must not assume the withdrawal landed")
	assert.Equal(t, stats.Hits+1, c.Reader().Cache().Stats().Hits)
}

func TestNewRequiresPolicy(t *testing.T) {
	_, err := client.New(nil, nil, client.Options{Tx: tx.DefaultConfig(testContract, testNetwork)})
	assert.ErrorIs(t, err, vault.ErrInvalidPenalty)

	_, err = client.New(nil, nil, client.Options{Policy: rangePolicy(t)})
	assert.Error(t, err)
}

func TestCreatedVaultsSatisfyLockArithmetic(t *testing.T) {
	node := newTestNode(t)
	owner := newOwner(t)
	c := newClient(t, node.ledger, owner, rangePolicy(t))
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 15

	properties := gopter.NewProperties(parameters)
	properties.Property("unlock time is created_at + days*86400", prop.ForAll(
		func(units int64, days uint64) bool {
			created, err := c.CreateVault(ctx, owner.Address(), amount.NewAmount(units), days)
			if err != nil {
				return false
			}
			v, err := c.GetVault(ctx, created.VaultID)
			if err != nil {
				return false
			}
			return v.Active &&
				v.Amount == amount.NewAmount(units) &&
				v.UnlockTime == v.CreatedAt+days*vault.SecondsPerDay &&
				v.CreatedAt <= node.now()
		},
		gen.Int64Range(1, 1_000_000_0000000),
		gen.UInt64Range(vault.MinLockDays, vault.MaxLockDays),
	))
	properties.TestingRun(t)
}
