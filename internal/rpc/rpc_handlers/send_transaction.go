package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// SendTransactionMethod submits a signed envelope. Rejections are part of
// the result (tx_status ERROR), not RPC errors.
type SendTransactionMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *SendTransactionMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
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

	result, err := m.Services.Ledger.SendTransaction(ctx.Context, request.Transaction)
	if err != nil {
		return nil, ledgerError(err)
	}
	return toResult(result)
}

func (m *SendTransactionMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *SendTransactionMethod) SupportedApiVersions() []int {
	return allVersions
}
