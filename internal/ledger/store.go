package ledger

import (
	"context"
	"errors"
	"fmt"

	binarycodec "github.com/LeJamon/goVaultd/internal/codec/binary-codec"
	"github.com/LeJamon/goVaultd/internal/scval"
	"github.com/LeJamon/goVaultd/internal/storage/database"
)

var (
	headerKey = []byte("ledger/header")
	txPrefix  = "tx/"
)

// Header describes a closed ledger.
type Header struct {
	Sequence  uint32 `codec:"seq"`
	CloseTime uint64 `codec:"close_time"`
	TxCount   int    `codec:"tx_count"`
}

// TxRecord is the stored outcome of an applied transaction.
type TxRecord struct {
	Hash      string       `codec:"hash"`
	Status    string       `codec:"status"`
	Result    *scval.Value `codec:"result,omitempty"`
	Error     string       `codec:"error,omitempty"`
	Ledger    uint32       `codec:"ledger"`
	TxnSeq    uint32       `codec:"txn_seq"`
	CloseTime uint64       `codec:"close_time"`
	Envelope  string       `codec:"envelope"`
}

func txKey(hash string) []byte {
	return []byte(txPrefix + hash)
}

func loadHeader(ctx context.Context, db database.DB) (*Header, bool, error) {
	raw, err := db.Read(ctx, headerKey)
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var h Header
	if err := binarycodec.Decode(raw, &h); err != nil {
		return nil, false, fmt.Errorf("decode ledger header: %w", err)
	}
	return &h, true, nil
}

func headerOp(h Header) (database.BatchOperation, error) {
	raw, err := binarycodec.Encode(h)
	if err != nil {
		return database.BatchOperation{}, err
	}
	return database.Put(headerKey, raw), nil
}

func recordOp(rec *TxRecord) (database.BatchOperation, error) {
	raw, err := binarycodec.Encode(rec)
	if err != nil {
		return database.BatchOperation{}, err
	}
	return database.Put(txKey(rec.Hash), raw), nil
}

func loadRecord(ctx context.Context, db database.DB, hash string) (*TxRecord, bool, error) {
	raw, err := db.Read(ctx, txKey(hash))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rec TxRecord
	if err := binarycodec.Decode(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("decode tx record %s: %w", hash, err)
	}
	return &rec, true, nil
}

// Transactions returns every stored transaction record in hash order.
func (l *Ledger) Transactions(ctx context.Context) ([]*TxRecord, error) {
	prefix := []byte(txPrefix)
	it, err := l.db.Iterator(ctx, prefix, database.PrefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []*TxRecord
	for it.Next() {
		var rec TxRecord
		if err := binarycodec.Decode(it.Value(), &rec); err != nil {
			return nil, fmt.Errorf("decode tx record %s: %w", it.Key(), err)
		}
		out = append(out, &rec)
	}
	return out, it.Error()
}
