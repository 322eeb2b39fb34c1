package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goVaultd/internal/config"
)

var (
	// Global flags
	configFile string
	debug      bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vaultd",
	Short: "goVaultd - time-locked vaults on a ledger",
	Long: `goVaultd locks ledger assets in time-locked vaults. It runs a standalone
ledger node serving the vault contract over JSON-RPC, and drives that node (or
any compatible one) from the command line: create vaults, withdraw them at
maturity, or withdraw early against a penalty.`,
	Version:           "0.1.0-dev",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
}

// setupLogging installs the process-wide slog handler on stderr
func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration selected by --conf
func loadConfig() (*config.Config, error) {
	return config.LoadConfig(configFile)
}
