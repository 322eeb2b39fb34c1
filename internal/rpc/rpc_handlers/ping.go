package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// PingMethod handles the ping RPC method
type PingMethod struct{}

func (m *PingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	// Empty response indicates successful ping
	return map[string]interface{}{}, nil
}

func (m *PingMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *PingMethod) SupportedApiVersions() []int {
	return allVersions
}
