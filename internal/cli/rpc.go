package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	rpcclient "github.com/LeJamon/goVaultd/internal/rpc/client"
)

// rpcCmd sends one raw JSON-RPC call to the configured node
var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [params-json]",
	Short: "Call an RPC method on the node",
	Long: `Send a single JSON-RPC request to network.rpc_url and print the result.

Examples:
  vaultd rpc getLatestLedger
  vaultd rpc getTransaction '{"hash":"..."}'
  vaultd rpc ledger_accept`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var params interface{}
		if len(args) == 2 {
			var obj map[string]interface{}
			if err := json.Unmarshal([]byte(args[1]), &obj); err != nil {
				return fmt.Errorf("invalid params: %w", err)
			}
			params = obj
		}

		var result map[string]interface{}
		if err := rpcclient.New(cfg.ClientConfig()).Call(cmd.Context(), args[0], params, &result); err != nil {
			return err
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rpcCmd)
}
