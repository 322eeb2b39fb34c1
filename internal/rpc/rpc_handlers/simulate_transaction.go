package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// SimulateTransactionMethod dry-runs an unsigned envelope against the
// latest ledger without changing state.
type SimulateTransactionMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *SimulateTransactionMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request rpc_types.TransactionParam
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Transaction == "" {
		return nil, rpc_types.RpcErrorMissingField("transaction")
	}
	if rpcErr := requireLedger(m.Services); rpcErr != nil {
		return nil, rpcErr
	}

	result, err := m.Services.Ledger.SimulateTransaction(ctx.Context, request.Transaction)
	if err != nil {
		return nil, ledgerError(err)
	}
	return toResult(result)
}

func (m *SimulateTransactionMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *SimulateTransactionMethod) SupportedApiVersions() []int {
	return allVersions
}
