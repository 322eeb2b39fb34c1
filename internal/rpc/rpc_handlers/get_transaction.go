package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// GetTransactionMethod reports the status of a submitted transaction
type GetTransactionMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *GetTransactionMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request rpc_types.HashParam
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Hash == "" {
		return nil, rpc_types.RpcErrorMissingField("hash")
	}
	hash, err := tx.ParseHash(request.Hash)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidHash(err.Error())
	}
	if rpcErr := requireLedger(m.Services); rpcErr != nil {
		return nil, rpcErr
	}

	result, err := m.Services.Ledger.GetTransaction(ctx.Context, hash)
	if err != nil {
		return nil, ledgerError(err)
	}
	return toResult(result)
}

func (m *GetTransactionMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *GetTransactionMethod) SupportedApiVersions() []int {
	return allVersions
}
