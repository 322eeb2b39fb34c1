// Package relationaldb keeps a queryable history of applied transactions,
// indexed by source account, in SQLite or PostgreSQL.
package relationaldb

import "context"

// TransactionInfo is one applied transaction as stored in the history
type TransactionInfo struct {
	Hash      string `json:"hash"`
	LedgerSeq uint32 `json:"ledger"`
	TxnSeq    uint32 `json:"txn_seq"`
	Account   string `json:"account"`
	Function  string `json:"function"`
	Status    string `json:"tx_status"`
	Error     string `json:"tx_error,omitempty"`
	CloseTime uint64 `json:"close_time"`
}

// AccountTxOptions contains criteria for account transaction queries
type AccountTxOptions struct {
	Account string
	Offset  uint32
	Limit   uint32
}

// TransactionRepository stores and queries transaction history
type TransactionRepository interface {
	// SaveTransactions inserts txs; already stored hashes are left unchanged.
	SaveTransactions(ctx context.Context, txs []TransactionInfo) error

	// GetAccountTransactions returns the account's transactions, newest first.
	GetAccountTransactions(ctx context.Context, opts AccountTxOptions) ([]TransactionInfo, error)

	GetTransactionCount(ctx context.Context) (int64, error)
}
