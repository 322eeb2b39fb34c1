package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goVaultd/internal/core/amount"
	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/core/vault"
	"github.com/LeJamon/goVaultd/internal/keys"
	"github.com/LeJamon/goVaultd/internal/ledger"
	"github.com/LeJamon/goVaultd/internal/rpc"
	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
	"github.com/LeJamon/goVaultd/internal/scval"
	"github.com/LeJamon/goVaultd/internal/storage/database/pebble"
	"github.com/LeJamon/goVaultd/internal/storage/relationaldb"
)

const (
	testNetwork  = "Test Vault Network"
	testContract = "CVAULT"
)

// startNode runs a standalone ledger behind an RPC server and returns a client for it.
func startNode(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := pebble.NewMemManager()
	t.Cleanup(func() { _ = m.Close() })
	db, err := m.OpenDB("ledger")
	require.NoError(t, err)

	hist, err := relationaldb.Open(ctx, relationaldb.SQLiteConfig(""))
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	l, err := ledger.Open(ctx, db, ledger.Config{
		Network:       testNetwork,
		Contract:      testContract,
		BaseFee:       100,
		CloseInterval: 20 * time.Millisecond,
	}, ledger.WithIndexer(ledger.NewHistoryIndex(hist)))
	require.NoError(t, err)
	go func() { _ = l.Run(ctx) }()

	services := &rpc_types.ServiceContainer{Ledger: l, History: hist}
	srv := httptest.NewServer(rpc.NewServer(services, 5*time.Second, []string{"127.0.0.1"}))
	t.Cleanup(srv.Close)

	return New(Config{URL: srv.URL, Timeout: 5 * time.Second, RequestsPerSecond: 1000, Burst: 50})
}

func TestClientLatestLedgerAndHealth(t *testing.T) {
	c := startNode(t)
	ctx := context.Background()

	latest, err := c.GetLatestLedger(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, latest.Sequence, uint32(1))
	assert.NotZero(t, latest.CloseTime)

	health, err := c.GetHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Health)
}

func TestClientAcceptLedger(t *testing.T) {
	c := startNode(t)
	ctx := context.Background()

	before, err := c.GetLatestLedger(ctx)
	require.NoError(t, err)
	seq, err := c.AcceptLedger(ctx)
	require.NoError(t, err)
	assert.Greater(t, seq, before.Sequence)
}

func TestClientRpcError(t *testing.T) {
	c := startNode(t)

	_, err := c.GetTransaction(context.Background(), "nothex")
	require.Error(t, err)
	var rpcErr *rpc_types.RpcError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, rpc_types.RpcINVALID_HASH, rpcErr.Code)
	assert.ErrorIs(t, err, tx.ErrRequestRejected)

	err = c.Call(context.Background(), "no_such_method", nil, nil)
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, "unknownCmd", rpcErr.ErrorString)
}

func TestPipelineSubmitErrorReplyIsNotOutcomeUnknown(t *testing.T) {
	node := startNode(t)
	// forward everything to the node except sendTransaction, which is refused
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if bytes.Contains(body, []byte(`"sendTransaction"`)) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"result":{"status":"error","error":"invalidParams","error_code":-32602,"error_message":"Missing field 'transaction'."}}`)
			return
		}
		resp, err := http.Post(node.url, "application/json", bytes.NewReader(body))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		_, _ = io.Copy(w, resp.Body)
	}))
	defer srv.Close()

	owner, err := keys.Generate(keys.KeyTypeEd25519)
	require.NoError(t, err)
	cfg := tx.DefaultConfig(testContract, testNetwork)
	cfg.PollInterval = 10 * time.Millisecond
	p := tx.NewPipeline(cfg, New(Config{URL: srv.URL}), owner)

	_, err = p.Run(context.Background(), tx.CreateVault{Owner: owner.Address(), Amount: amount.NewAmount(10), LockDays: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrSubmission)
	assert.False(t, vault.IsOutcomeUnknown(err))
	assert.Contains(t, err.Error(), "Missing field 'transaction'.")
}

func TestPipelineShowsLedgerRefusalText(t *testing.T) {
	c := startNode(t)
	owner, err := keys.Generate(keys.KeyTypeEd25519)
	require.NoError(t, err)

	p := tx.NewPipeline(tx.DefaultConfig("CWRONG", testNetwork), c, owner)
	_, err = p.Run(context.Background(), tx.CreateVault{Owner: owner.Address(), Amount: amount.NewAmount(10), LockDays: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrSimulation)
	assert.Contains(t, err.Error(), `unknown contract "CWRONG"`)
}

func TestClientHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL})
	_, err := c.GetLatestLedger(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 502")
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	c := New(Config{URL: "http://127.0.0.1:1", RequestsPerSecond: 0.001, Burst: 1})
	// Drain the single token.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.GetLatestLedger(ctx)
	require.Error(t, err)
}

func TestPipelineOverRPC(t *testing.T) {
	c := startNode(t)
	ctx := context.Background()

	owner, err := keys.Generate(keys.KeyTypeSecp256k1)
	require.NoError(t, err)

	cfg := tx.DefaultConfig(testContract, testNetwork)
	cfg.PollInterval = 25 * time.Millisecond
	cfg.PollAttempts = 80
	p := tx.NewPipeline(cfg, c, owner)

	res, err := p.Run(ctx, tx.CreateVault{Owner: owner.Address(), Amount: amount.NewAmount(1000_0000000), LockDays: 30})
	require.NoError(t, err)
	assert.Equal(t, vault.ID(1), res.VaultID)
	assert.NotEmpty(t, res.Hash)

	v, err := p.Call(ctx, owner.Address(), tx.FnGetVault, scval.U64(1))
	require.NoError(t, err)
	rec, found, err := scval.ToOptionalVault(1, v)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, owner.Address(), rec.Owner)
	assert.Equal(t, rec.CreatedAt+30*vault.SecondsPerDay, rec.UnlockTime)

	_, err = p.Run(ctx, tx.Withdraw{Owner: owner.Address(), VaultID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrSimulation)
	assert.ErrorIs(t, err, vault.ErrStillLocked)

	res, err = p.Run(ctx, tx.EarlyWithdraw{Owner: owner.Address(), VaultID: 1, PenaltyPercent: 7})
	require.NoError(t, err)
	assert.Equal(t, amount.NewAmount(930_0000000), res.Payout)
	assert.Equal(t, amount.NewAmount(70_0000000), res.Penalty)

	// the index is written just after the ledger commits
	var history []relationaldb.TransactionInfo
	require.Eventually(t, func() bool {
		history, err = c.AccountTransactions(ctx, owner.Address(), 10, 0)
		return err == nil && len(history) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, tx.FnEarlyWithdraw, history[0].Function)
	assert.Equal(t, res.Hash, history[0].Hash)
	assert.Equal(t, tx.FnCreateVault, history[1].Function)
}
