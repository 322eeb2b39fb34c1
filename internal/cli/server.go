package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goVaultd/internal/config"
	"github.com/LeJamon/goVaultd/internal/ledger"
	"github.com/LeJamon/goVaultd/internal/rpc"
	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
	"github.com/LeJamon/goVaultd/internal/storage/database"
	"github.com/LeJamon/goVaultd/internal/storage/database/leveldb"
	"github.com/LeJamon/goVaultd/internal/storage/database/pebble"
	"github.com/LeJamon/goVaultd/internal/storage/relationaldb"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run a standalone vault ledger node",
	Long: `Start a standalone ledger that hosts the vault contract and serves:
- simulateTransaction, sendTransaction, getTransaction
- getLatestLedger, getHealth, ping, version
- ledger_accept (admin only)

Ledgers close every server.close_interval. State lives in server.data_dir,
or in memory when it is empty.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().String("bind", "", "address to listen on (overrides server.bind)")
	serverCmd.Flags().String("data-dir", "", "ledger data directory (overrides server.data_dir)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
		cfg.Server.Bind = bind
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.Server.DataDir = dir
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg)
}

// openStore opens the ledger database on disk or in memory
func openStore(engine, dataDir string) (database.Manager, database.DB, error) {
	var manager database.Manager
	switch {
	case engine == "leveldb" && dataDir == "":
		manager = leveldb.NewMemManager()
	case engine == "leveldb":
		manager = leveldb.NewManager(dataDir)
	case dataDir == "":
		manager = pebble.NewMemManager()
	default:
		manager = pebble.NewManager(dataDir)
	}
	db, err := manager.OpenDB("ledger")
	if err != nil {
		_ = manager.Close()
		return nil, nil, err
	}
	return manager, db, nil
}

// openHistory opens the configured transaction index, or returns nil when disabled
func openHistory(ctx context.Context, server config.ServerConfig) (*relationaldb.Database, error) {
	var dbConfig *relationaldb.Config
	switch server.IndexDriver {
	case "none":
		return nil, nil
	case relationaldb.DriverPostgres:
		dbConfig = relationaldb.PostgresConfig(server.IndexDSN)
	default:
		path := server.IndexDSN
		if path == "" && server.DataDir != "" {
			path = filepath.Join(server.DataDir, "index.db")
		}
		dbConfig = relationaldb.SQLiteConfig(path)
	}
	return relationaldb.Open(ctx, dbConfig)
}

// serve runs the ledger close loop and the RPC server until ctx ends
func serve(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default().With("component", "server")

	manager, db, err := openStore(cfg.Server.StorageEngine, cfg.Server.DataDir)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer manager.Close()

	services := &rpc_types.ServiceContainer{}
	var opts []ledger.Option
	history, err := openHistory(ctx, cfg.Server)
	if err != nil {
		return fmt.Errorf("open transaction index: %w", err)
	}
	if history != nil {
		defer history.Close()
		services.History = history
		opts = append(opts, ledger.WithIndexer(ledger.NewHistoryIndex(history)))
	}

	l, err := ledger.Open(ctx, db, ledger.Config{
		Network:       cfg.Network.Passphrase,
		Contract:      cfg.Contract.ID,
		BaseFee:       cfg.Pipeline.BaseFee,
		CloseInterval: cfg.Server.CloseInterval,
		MaxQueue:      cfg.Server.MaxQueue,
	}, opts...)
	if err != nil {
		return err
	}
	services.Ledger = l
	if history != nil {
		if _, err := l.Reindex(ctx); err != nil {
			return err
		}
	}

	rpcServer := rpc.NewServer(services, cfg.RPC.Timeout, cfg.Server.Admin)
	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/rpc", rpcServer)
	httpServer := &http.Server{
		Addr:              cfg.Server.Bind,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Server.Bind, "network", cfg.Network.Passphrase,
			"contract", cfg.Contract.ID, "methods", len(rpcServer.Methods()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("stopped", "pending_transactions", l.Pending())
	return err
}
