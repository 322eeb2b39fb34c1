package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// LedgerAcceptMethod handles the ledger_accept RPC method.
// It closes the open ledger immediately instead of waiting for the close
// interval, applying every queued transaction.
type LedgerAcceptMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *LedgerAcceptMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if rpcErr := requireLedger(m.Services); rpcErr != nil {
		return nil, rpcErr
	}

	closedSeq, err := m.Services.Ledger.AcceptLedger(ctx.Context)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal("Failed to accept ledger: " + err.Error())
	}

	response := map[string]interface{}{
		"ledger_index": closedSeq,
	}

	return response, nil
}

func (m *LedgerAcceptMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleAdmin // ledger_accept requires admin privileges
}

func (m *LedgerAcceptMethod) SupportedApiVersions() []int {
	return allVersions
}
