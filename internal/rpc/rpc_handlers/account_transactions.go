package rpc_handlers

import (
	"encoding/json"
	"errors"

	"github.com/LeJamon/goVaultd/internal/keys"
	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
	"github.com/LeJamon/goVaultd/internal/storage/relationaldb"
)

// AccountTransactionsMethod lists the applied transactions an account submitted
type AccountTransactionsMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *AccountTransactionsMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request rpc_types.AccountTxParam
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Account == "" {
		return nil, rpc_types.RpcErrorMissingField("account")
	}
	if err := keys.ValidateAddress(request.Account); err != nil {
		return nil, rpc_types.RpcErrorInvalidParams("Malformed account: " + err.Error())
	}
	if m.Services == nil || m.Services.History == nil {
		return nil, rpc_types.RpcErrorNotEnabled("Transaction history")
	}

	txs, err := m.Services.History.GetAccountTransactions(ctx.Context, relationaldb.AccountTxOptions{
		Account: request.Account,
		Limit:   request.Limit,
		Offset:  request.Offset,
	})
	if errors.Is(err, relationaldb.ErrInvalidLimit) {
		return nil, rpc_types.RpcErrorInvalidParams(err.Error())
	}
	if err != nil {
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}
	if txs == nil {
		txs = []relationaldb.TransactionInfo{}
	}
	return map[string]interface{}{
		"account":      request.Account,
		"transactions": txs,
	}, nil
}

func (m *AccountTransactionsMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *AccountTransactionsMethod) SupportedApiVersions() []int {
	return allVersions
}
