package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// GetLatestLedgerMethod returns the last closed ledger
type GetLatestLedgerMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *GetLatestLedgerMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if rpcErr := requireLedger(m.Services); rpcErr != nil {
		return nil, rpcErr
	}
	latest, err := m.Services.Ledger.GetLatestLedger(ctx.Context)
	if err != nil {
		return nil, ledgerError(err)
	}
	return toResult(latest)
}

func (m *GetLatestLedgerMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *GetLatestLedgerMethod) SupportedApiVersions() []int {
	return allVersions
}
