package rpc_types

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/storage/relationaldb"
)

// API version constants
const (
	ApiVersion1       = 1
	DefaultApiVersion = ApiVersion1
)

// Role-based access control
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleAdmin
)

// RpcContext contains request-specific information
type RpcContext struct {
	Context    context.Context
	Role       Role
	ApiVersion int
	IsAdmin    bool
	ClientIP   string
}

// MethodHandler is implemented by every RPC method
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
	RequiredRole() Role
	SupportedApiVersions() []int
}

// MethodRegistry maps method names to handlers
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names in sorted order
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// LedgerService is the ledger the handlers serve: the endpoints the
// transaction pipeline consumes plus standalone administration.
type LedgerService interface {
	tx.LedgerRPC

	// Pending returns the number of queued transactions
	Pending() int

	// AcceptLedger closes the open ledger now and returns its sequence
	AcceptLedger(ctx context.Context) (uint32, error)
}

// ServiceContainer holds the services RPC handlers need
type ServiceContainer struct {
	Ledger LedgerService

	// History is nil when no transaction index is configured
	History relationaldb.TransactionRepository
}

// TransactionParam carries a base64 transaction envelope
type TransactionParam struct {
	Transaction string `json:"transaction"`
}

// HashParam identifies a submitted transaction
type HashParam struct {
	Hash string `json:"hash"`
}

// AccountTxParam pages through an account's transaction history
type AccountTxParam struct {
	Account string `json:"account"`
	Limit   uint32 `json:"limit,omitempty"`
	Offset  uint32 `json:"offset,omitempty"`
}
