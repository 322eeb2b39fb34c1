package tx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LeJamon/goVaultd/internal/core/vault"
	"github.com/LeJamon/goVaultd/internal/scval"
)

// Config holds the fixed parameters of a pipeline.
type Config struct {
	Contract     string
	Network      string
	BaseFee      uint64
	Timeout      time.Duration
	PollInterval time.Duration
	PollAttempts int
}

// DefaultConfig returns the standard timings: a 30 second validity window
// and ten polls one second apart.
func DefaultConfig(contract, network string) Config {
	return Config{
		Contract:     contract,
		Network:      network,
		BaseFee:      100,
		Timeout:      30 * time.Second,
		PollInterval: time.Second,
		PollAttempts: 10,
	}
}

// Pipeline turns intents into confirmed ledger outcomes:
// build, simulate, assemble, sign, submit, poll. Every stage either
// succeeds or ends the run; nothing is retried within a run.
type Pipeline struct {
	cfg    Config
	rpc    LedgerRPC
	signer Signer
	logger *slog.Logger
}

// NewPipeline creates a pipeline. signer may be nil, in which case every
// write fails at the sign stage with vault.ErrSignerUnavailable.
func NewPipeline(cfg Config, rpc LedgerRPC, signer Signer) *Pipeline {
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 10
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Pipeline{
		cfg:    cfg,
		rpc:    rpc,
		signer: signer,
		logger: slog.Default().With("component", "pipeline"),
	}
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run drives intent through every stage and returns the decoded result.
func (p *Pipeline) Run(ctx context.Context, intent Intent) (*Result, error) {
	log := p.logger.With("intent", intent.Function())

	built, err := p.Build(ctx, intent)
	if err != nil {
		return nil, err
	}
	log.Debug("built", "stage", vault.StageBuild, "max_time", built.TimeBounds.MaxTime)

	sim, err := p.Simulate(ctx, built)
	if err != nil {
		return nil, err
	}
	log.Debug("simulated", "stage", vault.StageSimulate, "resource_fee", sim.MinResourceFee)

	assembled := p.Assemble(built, sim)
	hash, err := assembled.Hash()
	if err != nil {
		return nil, &vault.LedgerError{Kind: vault.ErrSubmission, Err: err, Stage: vault.StageAssemble}
	}
	log = log.With("hash", hash)

	signed, err := p.Sign(ctx, assembled)
	if err != nil {
		return nil, err
	}
	log.Debug("signed", "stage", vault.StageSign)

	if err := p.Submit(ctx, signed, hash); err != nil {
		return nil, err
	}
	log.Debug("submitted", "stage", vault.StageSubmit)

	got, err := p.Poll(ctx, hash)
	if err != nil {
		return nil, err
	}

	res := &Result{Hash: hash, Ledger: got.Ledger}
	if got.Result != nil {
		res.Value = *got.Result
	}
	if err := intent.decode(res.Value, res); err != nil {
		return nil, &vault.LedgerError{Kind: vault.ErrContract, Err: err, Stage: vault.StagePoll, Hash: hash}
	}
	log.Debug("confirmed", "stage", vault.StagePoll, "ledger", got.Ledger)
	return res, nil
}

// Build creates the unsigned transaction for intent with a fresh nonce and a
// validity window of cfg.Timeout counted from the latest ledger close time.
func (p *Pipeline) Build(ctx context.Context, intent Intent) (*Transaction, error) {
	if intent.Source() == "" {
		return nil, fmt.Errorf("build %s: missing source account", intent.Function())
	}
	return p.build(ctx, intent.Source(), intent.Function(), intent.Args())
}

func (p *Pipeline) build(ctx context.Context, source, function string, args []scval.Value) (*Transaction, error) {
	latest, err := p.rpc.GetLatestLedger(ctx)
	if err != nil {
		return nil, rpcFailure(vault.ErrSimulation, vault.StageBuild, err, "")
	}
	nonce, err := NewNonce()
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Source:  source,
		Network: p.cfg.Network,
		Nonce:   nonce,
		Fee:     p.cfg.BaseFee,
		TimeBounds: TimeBounds{
			MaxTime: latest.CloseTime + uint64(p.cfg.Timeout/time.Second),
		},
		Operation: Operation{
			Contract: p.cfg.Contract,
			Function: function,
			Args:     args,
		},
	}, nil
}

// Simulate dry-runs t. A ledger diagnostic fails with vault.ErrSimulation.
func (p *Pipeline) Simulate(ctx context.Context, t *Transaction) (*SimulateResult, error) {
	payload, err := (&Envelope{Tx: *t}).Encode()
	if err != nil {
		return nil, &vault.LedgerError{Kind: vault.ErrSimulation, Err: err, Stage: vault.StageSimulate}
	}
	sim, err := p.rpc.SimulateTransaction(ctx, payload)
	if err != nil {
		return nil, rpcFailure(vault.ErrSimulation, vault.StageSimulate, err, "")
	}
	if sim.Error != "" {
		return nil, vault.NewLedgerError(vault.ErrSimulation, vault.StageSimulate, sim.Error, "")
	}
	return sim, nil
}

// Assemble returns a copy of t carrying the simulated footprint,
// authorizations and resource fee.
func (p *Pipeline) Assemble(t *Transaction, sim *SimulateResult) *Transaction {
	out := *t
	out.Fee = t.Fee + sim.MinResourceFee
	out.Footprint = Footprint{
		ReadOnly:  append([]string(nil), sim.Footprint.ReadOnly...),
		ReadWrite: append([]string(nil), sim.Footprint.ReadWrite...),
	}
	out.Auth = append([]string(nil), sim.Auth...)
	return &out
}

// Sign hands t to the signer and checks that the returned envelope still
// carries the same transaction.
func (p *Pipeline) Sign(ctx context.Context, t *Transaction) (string, error) {
	if p.signer == nil {
		return "", vault.ErrSignerUnavailable
	}
	payload, err := (&Envelope{Tx: *t}).Encode()
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	signed, err := p.signer.Sign(ctx, payload, p.cfg.Network)
	if err != nil {
		if errors.Is(err, vault.ErrSignerUnavailable) || errors.Is(err, vault.ErrSigningRejected) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", vault.ErrSigningRejected, err)
	}

	env, err := DecodeEnvelope(signed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", vault.ErrSigningRejected, err)
	}
	want, err := t.Hash()
	if err != nil {
		return "", err
	}
	got, err := env.Tx.Hash()
	if err != nil {
		return "", fmt.Errorf("%w: %w", vault.ErrSigningRejected, err)
	}
	if got != want {
		return "", fmt.Errorf("%w: signer altered the transaction", vault.ErrSigningRejected)
	}
	if len(env.Signatures) == 0 {
		return "", fmt.Errorf("%w: no signature returned", vault.ErrSigningRejected)
	}
	return signed, nil
}

// Submit sends a signed payload. Only PENDING and DUPLICATE are accepted.
// A refused request fails with vault.ErrSubmission; a transport failure
// leaves the outcome unknown and yields vault.ErrTimeout.
func (p *Pipeline) Submit(ctx context.Context, signed, hash string) error {
	res, err := p.rpc.SendTransaction(ctx, signed)
	if err != nil {
		return rpcFailure(vault.ErrSubmission, vault.StageSubmit, err, hash)
	}
	switch res.Status {
	case SendPending, SendDuplicate:
		if res.Hash != "" && res.Hash != hash {
			return vault.NewLedgerError(vault.ErrSubmission, vault.StageSubmit,
				fmt.Sprintf("ledger reported hash %s", res.Hash), hash)
		}
		return nil
	case SendTryAgainLater:
		diag := res.Error
		if diag == "" {
			diag = "ledger busy, try again later"
		}
		return vault.NewLedgerError(vault.ErrSubmission, vault.StageSubmit, diag, hash)
	default:
		diag := res.Error
		if diag == "" {
			diag = fmt.Sprintf("unexpected submission status %q", res.Status)
		}
		return vault.NewLedgerError(vault.ErrSubmission, vault.StageSubmit, diag, hash)
	}
}

// Poll waits for hash to reach a terminal state, checking every
// PollInterval for at most PollAttempts times. Lookup errors count as
// non-terminal attempts. Running out of attempts, or ctx ending, yields
// vault.ErrTimeout: the transaction may still land.
func (p *Pipeline) Poll(ctx context.Context, hash string) (*GetResult, error) {
	timer := time.NewTimer(p.cfg.PollInterval)
	defer timer.Stop()

	var lastErr error
	for attempt := 1; attempt <= p.cfg.PollAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &vault.LedgerError{Kind: vault.ErrTimeout, Err: err, Stage: vault.StagePoll, Hash: hash}
		}
		select {
		case <-ctx.Done():
			return nil, &vault.LedgerError{Kind: vault.ErrTimeout, Err: ctx.Err(), Stage: vault.StagePoll, Hash: hash}
		case <-timer.C:
		}

		res, err := p.rpc.GetTransaction(ctx, hash)
		switch {
		case err != nil:
			lastErr = err
			p.logger.Debug("status lookup failed", "hash", hash, "attempt", attempt, "error", err)
		case res.Status == StatusSuccess:
			return res, nil
		case res.Status == StatusFailed:
			return nil, vault.NewLedgerError(vault.ErrContract, vault.StagePoll, res.Error, hash)
		default:
			p.logger.Debug("not final", "hash", hash, "attempt", attempt, "status", res.Status)
		}
		timer.Reset(p.cfg.PollInterval)
	}
	timeout := vault.NewLedgerError(vault.ErrTimeout, vault.StagePoll,
		fmt.Sprintf("no final status after %d attempts", p.cfg.PollAttempts), hash)
	timeout.Err = lastErr
	return nil, timeout
}

// rpcFailure converts a LedgerRPC error. A refusal keeps the ledger's text as
// the diagnostic and fails with kind; anything else means the ledger may never
// have seen the request, which at submission leaves the outcome unknown.
func rpcFailure(kind error, stage vault.Stage, err error, hash string) *vault.LedgerError {
	if errors.Is(err, ErrRequestRejected) {
		return vault.NewLedgerError(kind, stage, err.Error(), hash)
	}
	if stage == vault.StageSubmit {
		kind = vault.ErrTimeout
	}
	return &vault.LedgerError{Kind: kind, Err: err, Stage: stage, Hash: hash}
}

// Call simulates a read-only contract function and returns its value.
// Nothing is signed or submitted.
func (p *Pipeline) Call(ctx context.Context, source, function string, args ...scval.Value) (scval.Value, error) {
	t, err := p.build(ctx, source, function, args)
	if err != nil {
		return scval.Value{}, err
	}
	sim, err := p.Simulate(ctx, t)
	if err != nil {
		return scval.Value{}, err
	}
	if sim.Result == nil {
		return scval.Void(), nil
	}
	return *sim.Result, nil
}
