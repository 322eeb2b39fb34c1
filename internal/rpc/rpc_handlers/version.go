package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// VersionMethod returns the supported API version range
type VersionMethod struct{}

func (m *VersionMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	response := map[string]interface{}{
		"version": map[string]interface{}{
			"first": rpc_types.ApiVersion1,
			"last":  rpc_types.ApiVersion1,
			"good":  rpc_types.DefaultApiVersion,
		},
	}

	return response, nil
}

func (m *VersionMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *VersionMethod) SupportedApiVersions() []int {
	return allVersions
}
