package relationaldb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// MaxLimit caps a single history page
const MaxLimit = 200

// schema is portable between SQLite and PostgreSQL
var schema = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		trans_id   TEXT PRIMARY KEY,
		ledger_seq BIGINT NOT NULL,
		txn_seq    INTEGER NOT NULL,
		account    TEXT NOT NULL,
		function   TEXT NOT NULL,
		status     TEXT NOT NULL,
		error      TEXT NOT NULL,
		close_time BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account, ledger_seq)`,
}

// Database is a TransactionRepository over database/sql
type Database struct {
	db     *sql.DB
	config *Config
}

var _ TransactionRepository = (*Database)(nil)

// Open connects to the configured database and initializes the schema
func Open(ctx context.Context, config *Config) (*Database, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(config.Driver, config.dataSource())
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", config.Driver, err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, config.DefaultTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s database: %w", config.Driver, err)
	}

	d := &Database{db: sqlDB, config: config}
	if err := d.initSchema(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Driver returns the driver in use
func (d *Database) Driver() string {
	return d.config.Driver
}

func (d *Database) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return NewQueryError("init_schema", "failed to create schema", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $n for PostgreSQL
func (d *Database) rebind(query string) string {
	if d.config.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *Database) SaveTransactions(ctx context.Context, txs []TransactionInfo) error {
	if d.db == nil {
		return ErrDatabaseClosed
	}
	if len(txs) == 0 {
		return nil
	}

	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return NewQueryError("save_transactions", "failed to begin transaction", err)
	}
	defer sqlTx.Rollback()

	query := d.rebind(`INSERT INTO transactions
		(trans_id, ledger_seq, txn_seq, account, function, status, error, close_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (trans_id) DO NOTHING`)
	for _, t := range txs {
		if _, err := sqlTx.ExecContext(ctx, query,
			t.Hash, t.LedgerSeq, t.TxnSeq, t.Account, t.Function, t.Status, t.Error, t.CloseTime); err != nil {
			return NewQueryError("save_transactions", "failed to save transaction "+t.Hash, err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return NewQueryError("save_transactions", "failed to commit", err)
	}
	return nil
}

func (d *Database) GetAccountTransactions(ctx context.Context, opts AccountTxOptions) ([]TransactionInfo, error) {
	if d.db == nil {
		return nil, ErrDatabaseClosed
	}
	if opts.Limit == 0 {
		opts.Limit = 50
	}
	if opts.Limit > MaxLimit {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidLimit, opts.Limit, MaxLimit)
	}

	query := d.rebind(`SELECT trans_id, ledger_seq, txn_seq, account, function, status, error, close_time
		FROM transactions WHERE account = ?
		ORDER BY ledger_seq DESC, txn_seq DESC
		LIMIT ? OFFSET ?`)
	rows, err := d.db.QueryContext(ctx, query, opts.Account, opts.Limit, opts.Offset)
	if err != nil {
		return nil, NewQueryError("get_account_transactions", "failed to query account transactions", err)
	}
	defer rows.Close()

	var results []TransactionInfo
	for rows.Next() {
		var t TransactionInfo
		if err := rows.Scan(&t.Hash, &t.LedgerSeq, &t.TxnSeq, &t.Account, &t.Function, &t.Status, &t.Error, &t.CloseTime); err != nil {
			return nil, NewQueryError("get_account_transactions", "failed to scan row", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("get_account_transactions", "error iterating rows", err)
	}
	return results, nil
}

func (d *Database) GetTransactionCount(ctx context.Context) (int64, error) {
	if d.db == nil {
		return 0, ErrDatabaseClosed
	}
	var count int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return 0, NewQueryError("get_transaction_count", "failed to count transactions", err)
	}
	return count, nil
}
