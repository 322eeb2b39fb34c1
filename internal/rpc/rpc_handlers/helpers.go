package rpc_handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/LeJamon/goVaultd/internal/ledger"
	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

var allVersions = []int{rpc_types.ApiVersion1}

// parseParams decodes params into v. Empty params leave v untouched.
func parseParams(params json.RawMessage, v interface{}) *rpc_types.RpcError {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

// toResult converts a typed response into the map the server decorates.
// Numbers stay json.Number so u64 fields survive re-encoding.
func toResult(v interface{}) (map[string]interface{}, *rpc_types.RpcError) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal("Failed to encode result: " + err.Error())
	}
	out := make(map[string]interface{})
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, rpc_types.RpcErrorInternal("Failed to encode result: " + err.Error())
	}
	return out, nil
}

// ledgerError maps a ledger failure to an RPC error.
func ledgerError(err error) *rpc_types.RpcError {
	if errors.Is(err, ledger.ErrInvalidRequest) {
		return rpc_types.RpcErrorInvalidParams(err.Error())
	}
	return rpc_types.RpcErrorInternal(err.Error())
}

func requireLedger(s *rpc_types.ServiceContainer) *rpc_types.RpcError {
	if s == nil || s.Ledger == nil {
		return rpc_types.RpcErrorInternal("Ledger service not available")
	}
	return nil
}
