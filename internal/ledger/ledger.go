// Package ledger is a standalone, single-node ledger hosting the vault
// contract. Submitted transactions are queued and applied in order when
// the next ledger closes.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/keys"
	"github.com/LeJamon/goVaultd/internal/storage/database"
)

// ErrInvalidRequest marks a request the ledger cannot interpret at all.
// It matches tx.ErrRequestRejected.
var ErrInvalidRequest error = invalidRequest{}

type invalidRequest struct{}

func (invalidRequest) Error() string { return "invalid request" }

func (invalidRequest) Is(target error) bool { return target == tx.ErrRequestRejected }

// Config holds the ledger's fixed parameters.
type Config struct {
	Network       string
	Contract      string
	BaseFee       uint64
	CloseInterval time.Duration
	MaxQueue      int
}

type pending struct {
	hash    string
	payload string
	env     *tx.Envelope
	signers []string
}

// Ledger implements tx.LedgerRPC in process.
type Ledger struct {
	cfg    Config
	db     database.DB
	clock  func() time.Time
	logger *slog.Logger

	indexer Indexer

	mu     sync.RWMutex
	header Header
	queue  []*pending
	queued map[string]bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces the wall clock used for close times.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithIndexer feeds every closed ledger to idx.
func WithIndexer(idx Indexer) Option {
	return func(l *Ledger) { l.indexer = idx }
}

// Open loads the ledger stored in db, starting a new chain when empty.
func Open(ctx context.Context, db database.DB, cfg Config, opts ...Option) (*Ledger, error) {
	if cfg.Network == "" || cfg.Contract == "" {
		return nil, errors.New("ledger: network and contract are required")
	}
	if cfg.CloseInterval <= 0 {
		cfg.CloseInterval = time.Second
	}
	if cfg.MaxQueue <= 0 {
		cfg.MaxQueue = 1000
	}
	l := &Ledger{
		cfg:    cfg,
		db:     db,
		clock:  time.Now,
		logger: slog.Default().With("component", "ledger"),
		queued: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}

	h, ok, err := loadHeader(ctx, db)
	if err != nil {
		return nil, err
	}
	if ok {
		l.header = *h
		l.logger.Info("ledger loaded", "ledger", h.Sequence, "close_time", h.CloseTime)
		return l, nil
	}

	l.header = Header{Sequence: 1, CloseTime: uint64(l.clock().Unix())}
	op, err := headerOp(l.header)
	if err != nil {
		return nil, err
	}
	if err := db.Batch(ctx, []database.BatchOperation{op}); err != nil {
		return nil, fmt.Errorf("write genesis header: %w", err)
	}
	l.logger.Info("genesis ledger created", "ledger", l.header.Sequence)
	return l, nil
}

// Config returns the ledger configuration.
func (l *Ledger) Config() Config {
	return l.cfg
}

// GetLatestLedger returns the last closed ledger.
func (l *Ledger) GetLatestLedger(ctx context.Context) (*tx.LatestLedger, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &tx.LatestLedger{Sequence: l.header.Sequence, CloseTime: l.header.CloseTime}, nil
}

// Pending returns the number of queued transactions.
func (l *Ledger) Pending() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.queue)
}

func (l *Ledger) decode(payload string) (*tx.Envelope, error) {
	env, err := tx.DecodeEnvelope(payload)
	if err != nil {
		return nil, err
	}
	if env.Tx.Network != l.cfg.Network {
		return nil, fmt.Errorf("transaction is for network %q", env.Tx.Network)
	}
	if env.Tx.Operation.Contract != l.cfg.Contract {
		return nil, fmt.Errorf("unknown contract %q", env.Tx.Operation.Contract)
	}
	return env, nil
}

// SimulateTransaction dry-runs an envelope at the latest close time.
// Signatures are not required; the authorizations the call needs are
// reported instead.
func (l *Ledger) SimulateTransaction(ctx context.Context, payload string) (*tx.SimulateResult, error) {
	env, err := l.decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	root := newView(ctx, l.db, l.cfg.Contract, l.header.CloseTime)
	sim := root.child(nil, nil)
	out := &tx.SimulateResult{LatestLedger: l.header.Sequence}

	val, err := invoke(sim, env.Tx.Operation.Function, env.Tx.Operation.Args)
	if err != nil {
		if !isContractError(err) {
			return nil, err
		}
		out.Error = err.Error()
		return out, nil
	}
	out.Result = &val
	out.MinResourceFee = sim.resourceFee()
	out.Footprint = sim.recorded()
	out.Auth = sim.auth
	return out, nil
}

// SendTransaction validates a signed envelope and queues it for the next
// close. Validation failures are reported in the result, not as errors.
func (l *Ledger) SendTransaction(ctx context.Context, payload string) (*tx.SendResult, error) {
	reject := func(hash, msg string) (*tx.SendResult, error) {
		return &tx.SendResult{Status: tx.SendError, Hash: hash, Error: msg}, nil
	}

	env, err := l.decode(payload)
	if err != nil {
		return reject("", err.Error())
	}
	hash, err := env.Tx.Hash()
	if err != nil {
		return reject("", err.Error())
	}
	if len(env.Signatures) == 0 {
		return reject(hash, "transaction is not signed")
	}
	signers, err := keys.VerifyEnvelope(env)
	if err != nil {
		return reject(hash, err.Error())
	}
	if !contains(signers, env.Tx.Source) {
		return reject(hash, "missing source account signature")
	}
	if env.Tx.Footprint.Empty() {
		return reject(hash, "transaction is not assembled: empty footprint")
	}
	if env.Tx.Fee < l.cfg.BaseFee {
		return reject(hash, fmt.Sprintf("insufficient fee: %d < %d", env.Tx.Fee, l.cfg.BaseFee))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if tb := env.Tx.TimeBounds; tb.MaxTime != 0 && l.header.CloseTime > tb.MaxTime {
		return reject(hash, "transaction expired")
	}
	if l.queued[hash] {
		return &tx.SendResult{Status: tx.SendDuplicate, Hash: hash}, nil
	}
	if _, ok, err := loadRecord(ctx, l.db, hash); err != nil {
		return nil, err
	} else if ok {
		return &tx.SendResult{Status: tx.SendDuplicate, Hash: hash}, nil
	}
	if len(l.queue) >= l.cfg.MaxQueue {
		return &tx.SendResult{Status: tx.SendTryAgainLater, Hash: hash}, nil
	}

	l.queue = append(l.queue, &pending{hash: hash, payload: payload, env: env, signers: signers})
	l.queued[hash] = true
	l.logger.Debug("transaction queued", "hash", hash, "function", env.Tx.Operation.Function)
	return &tx.SendResult{Status: tx.SendPending, Hash: hash}, nil
}

// GetTransaction reports the outcome of hash. Queued transactions are
// NOT_FOUND until their ledger closes.
func (l *Ledger) GetTransaction(ctx context.Context, hash string) (*tx.GetResult, error) {
	h, err := tx.ParseHash(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	rec, ok, err := loadRecord(ctx, l.db, h)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &tx.GetResult{Status: tx.StatusNotFound}, nil
	}
	return &tx.GetResult{Status: rec.Status, Result: rec.Result, Error: rec.Error, Ledger: rec.Ledger}, nil
}

// CloseLedger advances the ledger, applies every queued transaction in
// submission order and commits state and records in one batch.
func (l *Ledger) CloseLedger(ctx context.Context) (*Header, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := Header{Sequence: l.header.Sequence + 1, CloseTime: uint64(l.clock().Unix())}
	if next.CloseTime <= l.header.CloseTime {
		next.CloseTime = l.header.CloseTime + 1
	}

	state := newView(ctx, l.db, l.cfg.Contract, next.CloseTime)
	var records []*TxRecord
	for i, p := range l.queue {
		rec := l.apply(state, p, next)
		rec.TxnSeq = uint32(i)
		records = append(records, rec)
	}
	next.TxCount = len(records)

	ops := state.batch()
	for _, rec := range records {
		op, err := recordOp(rec)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	op, err := headerOp(next)
	if err != nil {
		return nil, err
	}
	ops = append(ops, op)
	if err := l.db.Batch(ctx, ops); err != nil {
		return nil, fmt.Errorf("commit ledger %d: %w", next.Sequence, err)
	}

	l.header = next
	l.queue = nil
	l.queued = make(map[string]bool)
	if next.TxCount > 0 {
		l.logger.Info("ledger closed", "ledger", next.Sequence, "applied", next.TxCount)
	} else {
		l.logger.Debug("ledger closed", "ledger", next.Sequence, "applied", 0)
	}
	if l.indexer != nil && len(records) > 0 {
		if err := l.indexer.IndexLedger(ctx, next, records); err != nil {
			l.logger.Warn("history index failed", "ledger", next.Sequence, "error", err)
		}
	}
	return &next, nil
}

func (l *Ledger) apply(state *view, p *pending, h Header) *TxRecord {
	rec := &TxRecord{
		Hash:      p.hash,
		Status:    tx.StatusFailed,
		Ledger:    h.Sequence,
		CloseTime: h.CloseTime,
		Envelope:  p.payload,
	}
	t := p.env.Tx
	if t.TimeBounds.MaxTime != 0 && h.CloseTime > t.TimeBounds.MaxTime {
		rec.Error = "transaction expired"
		return rec
	}
	if t.TimeBounds.MinTime != 0 && h.CloseTime < t.TimeBounds.MinTime {
		rec.Error = "transaction not yet valid"
		return rec
	}

	fp := t.Footprint
	exec := state.child(&fp, p.signers)
	val, err := invoke(exec, t.Operation.Function, t.Operation.Args)
	if err != nil {
		if isContractError(err) {
			rec.Error = err.Error()
		} else {
			l.logger.Error("transaction apply failed", "hash", p.hash, "error", err)
			rec.Error = "internal error"
		}
		return rec
	}
	if need := l.cfg.BaseFee + exec.resourceFee(); t.Fee < need {
		rec.Error = fmt.Sprintf("insufficient resource fee: %d < %d", t.Fee, need)
		return rec
	}

	exec.merge()
	rec.Status = tx.StatusSuccess
	rec.Result = &val
	return rec
}

// Run closes a ledger every CloseInterval until ctx ends.
func (l *Ledger) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.CloseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := l.CloseLedger(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				l.logger.Error("ledger close failed", "error", err)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// AcceptLedger closes the open ledger immediately.
func (l *Ledger) AcceptLedger(ctx context.Context) (uint32, error) {
	h, err := l.CloseLedger(ctx)
	if err != nil {
		return 0, err
	}
	return h.Sequence, nil
}
