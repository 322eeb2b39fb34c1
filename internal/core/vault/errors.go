package vault

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goVaultd/internal/core/amount"
	"github.com/LeJamon/goVaultd/internal/core/penalty"
)

// Local validation failures. These are reported before any network call.
var (
	ErrInvalidAmount   = amount.ErrInvalidAmount
	ErrInvalidDuration = errors.New("invalid lock duration")
	ErrInvalidPenalty  = penalty.ErrInvalidPenalty
	ErrVaultInactive   = errors.New("vault is not active")
	ErrStillLocked     = errors.New("vault is still locked")
	ErrAlreadyUnlocked = errors.New("vault is already unlocked")
	ErrVaultNotFound   = errors.New("vault not found")
	ErrUnauthorized    = errors.New("not authorized for vault")
)

// Pipeline failures.
var (
	ErrSignerUnavailable = errors.New("signer unavailable")
	ErrSigningRejected   = errors.New("signing rejected")
	ErrSimulation        = errors.New("simulation failed")
	ErrSubmission        = errors.New("submission failed")
	ErrContract          = errors.New("contract error")
	ErrTimeout           = errors.New("transaction outcome unknown")
)

// Stage names the pipeline state at which a transaction left the happy path.
type Stage string

const (
	StageBuild    Stage = "build"
	StageSimulate Stage = "simulate"
	StageAssemble Stage = "assemble"
	StageSign     Stage = "sign"
	StageSubmit   Stage = "submit"
	StagePoll     Stage = "poll"
)

// LedgerError is a failure reported by, or about, the ledger. Kind is one of
// ErrSimulation, ErrSubmission, ErrContract or ErrTimeout; Cause is the precise
// local kind recovered from the diagnostic text, if any. Err is the underlying
// failure when the ledger never answered, such as a transport error.
type LedgerError struct {
	Kind       error
	Cause      error
	Err        error
	Stage      Stage
	Diagnostic string
	Hash       string
}

func (e *LedgerError) Error() string {
	msg := e.Kind.Error()
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hash != "" {
		msg += fmt.Sprintf(" (tx %s)", e.Hash)
	}
	return msg
}

func (e *LedgerError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewLedgerError builds a LedgerError and classifies its diagnostic.
func NewLedgerError(kind error, stage Stage, diagnostic, hash string) *LedgerError {
	return &LedgerError{
		Kind:       kind,
		Cause:      Classify(diagnostic),
		Stage:      stage,
		Diagnostic: diagnostic,
		Hash:       hash,
	}
}

// IsOutcomeUnknown reports whether err leaves the ledger outcome undetermined.
// Callers must not assume funds did or did not move.
func IsOutcomeUnknown(err error) bool {
	return errors.Is(err, ErrTimeout)
}
