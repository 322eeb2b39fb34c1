package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// GetHealthMethod reports whether the ledger is serving requests
type GetHealthMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *GetHealthMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if rpcErr := requireLedger(m.Services); rpcErr != nil {
		return nil, rpcErr
	}
	latest, err := m.Services.Ledger.GetLatestLedger(ctx.Context)
	if err != nil {
		return nil, ledgerError(err)
	}
	return map[string]interface{}{
		"health":               "healthy",
		"latest_ledger":        latest.Sequence,
		"pending_transactions": m.Services.Ledger.Pending(),
	}, nil
}

func (m *GetHealthMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *GetHealthMethod) SupportedApiVersions() []int {
	return allVersions
}
