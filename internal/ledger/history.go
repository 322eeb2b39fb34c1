package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/storage/relationaldb"
)

// Indexer receives the records of each closed ledger.
type Indexer interface {
	IndexLedger(ctx context.Context, h Header, records []*TxRecord) error
}

// HistoryIndex writes applied transactions into a relational history.
type HistoryIndex struct {
	repo relationaldb.TransactionRepository
}

var _ Indexer = (*HistoryIndex)(nil)

// NewHistoryIndex returns an Indexer backed by repo.
func NewHistoryIndex(repo relationaldb.TransactionRepository) *HistoryIndex {
	return &HistoryIndex{repo: repo}
}

func (h *HistoryIndex) IndexLedger(ctx context.Context, _ Header, records []*TxRecord) error {
	infos := make([]relationaldb.TransactionInfo, 0, len(records))
	for _, rec := range records {
		info, err := historyInfo(rec)
		if err != nil {
			return err
		}
		infos = append(infos, info)
	}
	return h.repo.SaveTransactions(ctx, infos)
}

func historyInfo(rec *TxRecord) (relationaldb.TransactionInfo, error) {
	env, err := tx.DecodeEnvelope(rec.Envelope)
	if err != nil {
		return relationaldb.TransactionInfo{}, fmt.Errorf("tx %s: %w", rec.Hash, err)
	}
	return relationaldb.TransactionInfo{
		Hash:      rec.Hash,
		LedgerSeq: rec.Ledger,
		TxnSeq:    rec.TxnSeq,
		Account:   env.Tx.Source,
		Function:  env.Tx.Operation.Function,
		Status:    rec.Status,
		Error:     rec.Error,
		CloseTime: rec.CloseTime,
	}, nil
}

// Reindex replays every stored transaction into the configured indexer.
// It returns the number of records indexed.
func (l *Ledger) Reindex(ctx context.Context) (int, error) {
	if l.indexer == nil {
		return 0, nil
	}
	records, err := l.Transactions(ctx)
	if err != nil {
		return 0, err
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Ledger != records[j].Ledger {
			return records[i].Ledger < records[j].Ledger
		}
		return records[i].TxnSeq < records[j].TxnSeq
	})

	for start := 0; start < len(records); {
		end := start
		for end < len(records) && records[end].Ledger == records[start].Ledger {
			end++
		}
		h := Header{Sequence: records[start].Ledger, CloseTime: records[start].CloseTime, TxCount: end - start}
		if err := l.indexer.IndexLedger(ctx, h, records[start:end]); err != nil {
			return 0, fmt.Errorf("reindex ledger %d: %w", h.Sequence, err)
		}
		start = end
	}
	l.logger.Info("history reindexed", "transactions", len(records))
	return len(records), nil
}
