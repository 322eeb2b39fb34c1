// Package client is the JSON-RPC client of a vault ledger node. It
// implements tx.LedgerRPC so the transaction pipeline can drive a remote
// ledger exactly like an in-process one.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
	"github.com/LeJamon/goVaultd/internal/storage/relationaldb"
)

// Config holds the client settings.
type Config struct {
	URL               string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client talks to a vaultd RPC endpoint.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ tx.LedgerRPC = (*Client)(nil)

// New creates a client. A zero RequestsPerSecond disables pacing.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		url:     cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		logger:  slog.Default().With("component", "rpc-client"),
	}
}

type request struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params,omitempty"`
}

type envelope struct {
	Result json.RawMessage `json:"result"`
}

type statusOnly struct {
	Status       string `json:"status"`
	Error        string `json:"error"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Call invokes method with params and decodes the result into out.
// An error response from the server is returned as *rpc_types.RpcError.
func (c *Client) Call(ctx context.Context, method string, params interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req := request{Method: method}
	if params != nil {
		req.Params = []interface{}{params}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("rpc call", "method", method, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: http %d: %s", method, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	var st statusOnly
	if err := json.Unmarshal(env.Result, &st); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if st.Status == "error" {
		return rpc_types.NewRpcError(st.ErrorCode, st.Error, st.Error, st.ErrorMessage)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

// SimulateTransaction dry-runs an unsigned envelope.
func (c *Client) SimulateTransaction(ctx context.Context, payload string) (*tx.SimulateResult, error) {
	var out tx.SimulateResult
	if err := c.Call(ctx, "simulateTransaction", rpc_types.TransactionParam{Transaction: payload}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendTransaction submits a signed envelope.
func (c *Client) SendTransaction(ctx context.Context, payload string) (*tx.SendResult, error) {
	var out tx.SendResult
	if err := c.Call(ctx, "sendTransaction", rpc_types.TransactionParam{Transaction: payload}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransaction looks up a submitted transaction.
func (c *Client) GetTransaction(ctx context.Context, hash string) (*tx.GetResult, error) {
	var out tx.GetResult
	if err := c.Call(ctx, "getTransaction", rpc_types.HashParam{Hash: hash}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLatestLedger returns the last closed ledger.
func (c *Client) GetLatestLedger(ctx context.Context) (*tx.LatestLedger, error) {
	var out tx.LatestLedger
	if err := c.Call(ctx, "getLatestLedger", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health is the getHealth answer.
type Health struct {
	Health              string `json:"health"`
	LatestLedger        uint32 `json:"latest_ledger"`
	PendingTransactions int    `json:"pending_transactions"`
}

// GetHealth reports node health.
func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.Call(ctx, "getHealth", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptLedger asks a standalone node to close its open ledger. Admin only.
func (c *Client) AcceptLedger(ctx context.Context) (uint32, error) {
	var out struct {
		LedgerIndex uint32 `json:"ledger_index"`
	}
	if err := c.Call(ctx, "ledger_accept", nil, &out); err != nil {
		return 0, err
	}
	return out.LedgerIndex, nil
}

// AccountTransactions pages through the history of transactions account submitted.
func (c *Client) AccountTransactions(ctx context.Context, account string, limit, offset uint32) ([]relationaldb.TransactionInfo, error) {
	var out struct {
		Transactions []relationaldb.TransactionInfo `json:"transactions"`
	}
	params := rpc_types.AccountTxParam{Account: account, Limit: limit, Offset: offset}
	if err := c.Call(ctx, "accountTransactions", params, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}
