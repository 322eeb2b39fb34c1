package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	vaultclient "github.com/LeJamon/goVaultd/internal/client"
	"github.com/LeJamon/goVaultd/internal/core/amount"
	"github.com/LeJamon/goVaultd/internal/core/vault"
	"github.com/LeJamon/goVaultd/internal/keys"
	rpcclient "github.com/LeJamon/goVaultd/internal/rpc/client"
)

// SeedEnv holds the signing seed when --seed is not given
const SeedEnv = "VAULTD_SEED"

var (
	// Vault flags
	seedHex    string
	keyType    string
	owner      string
	lockDays   uint64
	penaltyPct uint32
	pageLimit  uint32
	pageOffset uint32
)

// vaultCmd represents the vault command group
var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Create, inspect and withdraw vaults",
	Long: `Vault commands talk to the node at network.rpc_url. Writes are signed
locally with the key given by --seed (or $VAULTD_SEED); keys never leave
this process.`,
}

var vaultCreateCmd = &cobra.Command{
	Use:   "create <amount>",
	Short: "Lock an amount for --days days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := amount.ToBaseUnits(args[0])
		if err != nil {
			return err
		}
		c, kp, err := newVaultClient(true)
		if err != nil {
			return err
		}
		res, err := c.CreateVault(cmd.Context(), kp.Address(), amt, lockDays)
		if err != nil {
			return explain(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "vault %s created (tx %s)\n", res.VaultID, res.Hash)
		return nil
	},
}

var vaultWithdrawCmd = &cobra.Command{
	Use:   "withdraw <vault-id>",
	Short: "Withdraw a matured vault in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseVaultID(args[0])
		if err != nil {
			return err
		}
		c, _, err := newVaultClient(true)
		if err != nil {
			return err
		}
		res, err := c.Withdraw(cmd.Context(), id)
		if err != nil {
			return explain(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "vault %s withdrawn: payout %s (tx %s)\n", id, amount.ToDecimal(res.Payout), res.Hash)
		return nil
	},
}

var vaultEarlyWithdrawCmd = &cobra.Command{
	Use:   "early-withdraw <vault-id>",
	Short: "Withdraw a vault before maturity against a penalty",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseVaultID(args[0])
		if err != nil {
			return err
		}
		c, _, err := newVaultClient(true)
		if err != nil {
			return err
		}
		pct := penaltyPct
		if !cmd.Flags().Changed("penalty") {
			pct = c.Policy().Default()
		}
		res, err := c.EarlyWithdraw(cmd.Context(), id, pct)
		if err != nil {
			return explain(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "vault %s withdrawn early at %d%%: payout %s, penalty %s (tx %s)\n",
			id, pct, amount.ToDecimal(res.Payout), amount.ToDecimal(res.Penalty), res.Hash)
		return nil
	},
}

var vaultQuoteCmd = &cobra.Command{
	Use:   "quote <vault-id>",
	Short: "Preview an early withdrawal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseVaultID(args[0])
		if err != nil {
			return err
		}
		c, _, err := newVaultClient(false)
		if err != nil {
			return err
		}
		pct := penaltyPct
		if !cmd.Flags().Changed("penalty") {
			pct = c.Policy().Default()
		}
		q, err := c.Quote(cmd.Context(), id, pct)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "vault %s at %d%% (policy %s): payout %s, penalty %s\n",
			id, pct, c.Policy(), amount.ToDecimal(q.Payout), amount.ToDecimal(q.Penalty))
		return nil
	},
}

var vaultShowCmd = &cobra.Command{
	Use:   "show <vault-id>",
	Short: "Show one vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseVaultID(args[0])
		if err != nil {
			return err
		}
		c, _, err := newVaultClient(false)
		if err != nil {
			return err
		}
		v, err := c.GetVault(cmd.Context(), id)
		if err != nil {
			return err
		}
		printVaults(cmd.OutOrStdout(), []vault.Vault{v})
		return nil
	},
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the vaults of --owner, or of the signing key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, kp, err := newVaultClient(owner == "")
		if err != nil {
			return err
		}
		who := owner
		if who == "" {
			who = kp.Address()
		}
		vaults, err := c.ListVaults(cmd.Context(), who)
		if err != nil {
			return err
		}
		if len(vaults) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no vaults for %s\n", who)
			return nil
		}
		printVaults(cmd.OutOrStdout(), vaults)
		return nil
	},
}

var vaultCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of vaults ever created",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newVaultClient(false)
		if err != nil {
			return err
		}
		n, err := c.VaultCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var vaultHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List the transactions submitted by --owner, or by the signing key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		who := owner
		if who == "" {
			kp, err := loadKey()
			if err != nil {
				return err
			}
			who = kp.Address()
		}
		txs, err := rpcclient.New(cfg.ClientConfig()).AccountTransactions(cmd.Context(), who, pageLimit, pageOffset)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(txs) == 0 {
			fmt.Fprintf(w, "no transactions for %s\n", who)
			return nil
		}
		fmt.Fprintf(w, "%-8s %-16s %-8s %-64s %s\n", "LEDGER", "FUNCTION", "STATUS", "HASH", "ERROR")
		for _, t := range txs {
			fmt.Fprintf(w, "%-8d %-16s %-8s %-64s %s\n", t.LedgerSeq, t.Function, t.Status, t.Hash, t.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vaultCmd)
	vaultCmd.AddCommand(vaultCreateCmd, vaultWithdrawCmd, vaultEarlyWithdrawCmd,
		vaultQuoteCmd, vaultShowCmd, vaultListCmd, vaultCountCmd, vaultHistoryCmd)

	vaultCmd.PersistentFlags().StringVar(&seedHex, "seed", "", "hex seed of the signing key (default $"+SeedEnv+")")
	vaultCmd.PersistentFlags().StringVar(&keyType, "key-type", string(keys.KeyTypeEd25519), "signing key type: ed25519 or secp256k1")

	vaultCreateCmd.Flags().Uint64Var(&lockDays, "days", 30, "lock duration in days (7-365)")
	vaultEarlyWithdrawCmd.Flags().Uint32Var(&penaltyPct, "penalty", 0, "penalty percent (default: the policy's default rate)")
	vaultQuoteCmd.Flags().Uint32Var(&penaltyPct, "penalty", 0, "penalty percent (default: the policy's default rate)")
	vaultListCmd.Flags().StringVar(&owner, "owner", "", "owner address (default: the signing key's address)")
	vaultHistoryCmd.Flags().StringVar(&owner, "owner", "", "account address (default: the signing key's address)")
	vaultHistoryCmd.Flags().Uint32Var(&pageLimit, "limit", 20, "maximum transactions to show")
	vaultHistoryCmd.Flags().Uint32Var(&pageOffset, "offset", 0, "transactions to skip")
}

// newVaultClient builds a facade against the configured node. When needKey
// is set the signing key is loaded and required.
func newVaultClient(needKey bool) (*vaultclient.VaultClient, *keys.KeyPair, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	policy, err := cfg.PenaltyPolicy()
	if err != nil {
		return nil, nil, err
	}

	var kp *keys.KeyPair
	if needKey {
		if kp, err = loadKey(); err != nil {
			return nil, nil, err
		}
	}

	opts := vaultclient.Options{Tx: cfg.TxConfig(), Policy: policy, CacheSize: cfg.Reader.CacheSize}
	if kp != nil {
		opts.ReadAccount = kp.Address()
		opts.Owner = kp.Address()
	}
	rpc := rpcclient.New(cfg.ClientConfig())

	// A nil *keys.KeyPair must stay a nil interface so the pipeline reports
	// ErrSignerUnavailable.
	var c *vaultclient.VaultClient
	if kp != nil {
		c, err = vaultclient.New(rpc, kp, opts)
	} else {
		c, err = vaultclient.New(rpc, nil, opts)
	}
	if err != nil {
		return nil, nil, err
	}
	return c, kp, nil
}

func loadKey() (*keys.KeyPair, error) {
	seed := seedHex
	if seed == "" {
		seed = os.Getenv(SeedEnv)
	}
	if seed == "" {
		return nil, fmt.Errorf("%w: pass --seed or set $%s", vault.ErrSignerUnavailable, SeedEnv)
	}
	kt, err := keys.ParseKeyType(keyType)
	if err != nil {
		return nil, err
	}
	return keys.FromSeedHex(kt, seed)
}

func parseVaultID(s string) (vault.ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid vault id %q", s)
	}
	return vault.ID(n), nil
}

// explain adds the caller-facing note that a timed-out transaction may still land
func explain(err error) error {
	if vault.IsOutcomeUnknown(err) {
		return fmt.Errorf("%w; the transaction may still be applied, check the vault before retrying", err)
	}
	return err
}

func printVaults(w io.Writer, vaults []vault.Vault) {
	now := uint64(time.Now().Unix())
	fmt.Fprintf(w, "%-6s %-16s %-12s %-8s %s\n", "ID", "AMOUNT", "UNLOCKS", "ACTIVE", "OWNER")
	for _, v := range vaults {
		unlock := time.Unix(int64(v.UnlockTime), 0).UTC().Format("2006-01-02")
		status := "no"
		if v.Active {
			status = "yes"
			if !v.IsUnlocked(now) {
				status = vault.FormatRemaining(v.Remaining(now))
			}
		}
		fmt.Fprintf(w, "%-6s %-16s %-12s %-8s %s\n", v.ID, amount.ToDecimal(v.Amount), unlock, status, v.Owner)
	}
}
