package tx

//go:generate mockgen -source=ledger_rpc.go -destination=mocks/ledger_rpc_mock.go -package=mocks

import (
	"context"
	"errors"

	"github.com/LeJamon/goVaultd/internal/scval"
)

// ErrRequestRejected matches errors a LedgerRPC returns when the endpoint
// answered and refused the request. Nothing was queued.
var ErrRequestRejected = errors.New("request rejected")

// Submission statuses returned by sendTransaction.
const (
	SendPending       = "PENDING"
	SendDuplicate     = "DUPLICATE"
	SendTryAgainLater = "TRY_AGAIN_LATER"
	SendError         = "ERROR"
)

// Statuses returned by getTransaction.
const (
	StatusNotFound = "NOT_FOUND"
	StatusSuccess  = "SUCCESS"
	StatusFailed   = "FAILED"
)

// SimulateResult is the outcome of a dry run. Error is set when the
// operation would fail; the other fields are then unreliable.
type SimulateResult struct {
	MinResourceFee uint64       `json:"min_resource_fee"`
	Footprint      Footprint    `json:"footprint"`
	Auth           []string     `json:"auth,omitempty"`
	Result         *scval.Value `json:"result,omitempty"`
	LatestLedger   uint32       `json:"latest_ledger"`
	Error          string       `json:"simulation_error,omitempty"`
}

// SendResult is the synchronous answer to a submission.
type SendResult struct {
	Status string `json:"tx_status"`
	Hash   string `json:"hash"`
	Error  string `json:"tx_error,omitempty"`
}

// GetResult reports the state of a submitted transaction.
type GetResult struct {
	Status string       `json:"tx_status"`
	Result *scval.Value `json:"result,omitempty"`
	Error  string       `json:"tx_error,omitempty"`
	Ledger uint32       `json:"ledger,omitempty"`
}

// LatestLedger describes the most recently closed ledger.
type LatestLedger struct {
	Sequence  uint32 `json:"sequence"`
	CloseTime uint64 `json:"close_time"`
}

// LedgerRPC is the ledger endpoint the pipeline talks to.
type LedgerRPC interface {
	SimulateTransaction(ctx context.Context, payload string) (*SimulateResult, error)
	SendTransaction(ctx context.Context, payload string) (*SendResult, error)
	GetTransaction(ctx context.Context, hash string) (*GetResult, error)
	GetLatestLedger(ctx context.Context) (*LatestLedger, error)
}

// Signer turns an unsigned payload into a signed one for the given network.
// Implementations return vault.ErrSigningRejected when they refuse.
type Signer interface {
	Sign(ctx context.Context, payload string, network string) (string, error)
}
