package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/keys"
	"github.com/LeJamon/goVaultd/internal/scval"
	"github.com/LeJamon/goVaultd/internal/storage/relationaldb"
)

func openHistory(t *testing.T) *relationaldb.Database {
	t.Helper()
	db, err := relationaldb.Open(context.Background(), relationaldb.SQLiteConfig(""))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestHistoryIndexRecordsClosedLedgers(t *testing.T) {
	e := newTestEnv(t)
	hist := openHistory(t)
	WithIndexer(NewHistoryIndex(hist))(e.ledger)

	id := e.createVault(100, 7)
	got := e.call(e.owner, tx.FnWithdraw, scval.U64(uint64(id)))
	require.Equal(t, tx.StatusFailed, got.Status)

	txs, err := hist.GetAccountTransactions(e.ctx, relationaldb.AccountTxOptions{Account: e.owner.Address()})
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, tx.FnWithdraw, txs[0].Function)
	assert.Equal(t, tx.StatusFailed, txs[0].Status)
	assert.NotEmpty(t, txs[0].Error)
	assert.Equal(t, tx.FnCreateVault, txs[1].Function)
	assert.Equal(t, tx.StatusSuccess, txs[1].Status)
	assert.Greater(t, txs[0].LedgerSeq, txs[1].LedgerSeq)

	other, err := keys.Generate(keys.KeyTypeEd25519)
	require.NoError(t, err)
	none, err := hist.GetAccountTransactions(e.ctx, relationaldb.AccountTxOptions{Account: other.Address()})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReindexRebuildsHistory(t *testing.T) {
	e := newTestEnv(t)
	e.createVault(100, 7)
	e.createVault(200, 7)

	hist := openHistory(t)
	WithIndexer(NewHistoryIndex(hist))(e.ledger)
	n, err := e.ledger.Reindex(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := hist.GetTransactionCount(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// replays are idempotent
	_, err = e.ledger.Reindex(e.ctx)
	require.NoError(t, err)
	count, err = hist.GetTransactionCount(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

type failingIndexer struct{ calls int }

func (f *failingIndexer) IndexLedger(context.Context, Header, []*TxRecord) error {
	f.calls++
	return errors.New("index unavailable")
}

func TestIndexFailureDoesNotBlockClose(t *testing.T) {
	e := newTestEnv(t)
	idx := &failingIndexer{}
	WithIndexer(idx)(e.ledger)

	e.createVault(100, 7)
	assert.Equal(t, 1, idx.calls)

	latest, err := e.ledger.GetLatestLedger(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), latest.Sequence)
}
