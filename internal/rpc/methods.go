package rpc

import (
	"github.com/LeJamon/goVaultd/internal/rpc/rpc_handlers"
	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// registerAllMethods registers every RPC method against the given services
func (s *Server) registerAllMethods(services *rpc_types.ServiceContainer) {
	// Server Information Methods
	s.registry.Register("ping", &rpc_handlers.PingMethod{})
	s.registry.Register("version", &rpc_handlers.VersionMethod{})
	s.registry.Register("getHealth", &rpc_handlers.GetHealthMethod{Services: services})

	// Ledger Methods
	s.registry.Register("getLatestLedger", &rpc_handlers.GetLatestLedgerMethod{Services: services})

	// Transaction Methods
	s.registry.Register("simulateTransaction", &rpc_handlers.SimulateTransactionMethod{Services: services})
	s.registry.Register("sendTransaction", &rpc_handlers.SendTransactionMethod{Services: services})
	s.registry.Register("getTransaction", &rpc_handlers.GetTransactionMethod{Services: services})

	// Account Methods
	s.registry.Register("accountTransactions", &rpc_handlers.AccountTransactionsMethod{Services: services})

	// Standalone mode methods (require admin role)
	s.registry.Register("ledger_accept", &rpc_handlers.LedgerAcceptMethod{Services: services})
}
