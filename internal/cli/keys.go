package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goVaultd/internal/keys"
)

// keysCmd represents the keys command group
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage signing keys",
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair",
	Long:  `Generate a key pair and print its address, public key and seed. Keep the seed secret.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		kt, err := keys.ParseKeyType(typ)
		if err != nil {
			return err
		}
		kp, err := keys.Generate(kt)
		if err != nil {
			return err
		}
		printKey(cmd, kp)
		return nil
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show <seed>",
	Short: "Derive the address of a seed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		kt, err := keys.ParseKeyType(typ)
		if err != nil {
			return err
		}
		kp, err := keys.FromSeedHex(kt, args[0])
		if err != nil {
			return err
		}
		printKey(cmd, kp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGenerateCmd, keysShowCmd)
	keysCmd.PersistentFlags().String("type", string(keys.KeyTypeEd25519), "key type: ed25519 or secp256k1")
}

func printKey(cmd *cobra.Command, kp *keys.KeyPair) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "key_type:   %s\n", kp.KeyType())
	fmt.Fprintf(out, "address:    %s\n", kp.Address())
	fmt.Fprintf(out, "public_key: %s\n", hex.EncodeToString(kp.PublicKey()))
	fmt.Fprintf(out, "seed:       %s\n", kp.SeedHex())
}
