package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pauljones0/free-asset-notifier/internal/config"
	"github.com/pauljones0/free-asset-notifier/internal/ledger"
)

func init() {
	rootCmd.AddCommand(ledgerCmd)
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Prints the savings ledger.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadLocal(envFile)
		if err != nil {
			return err
		}
		l := ledger.NewFileStore(cfg.LedgerPath).Load()
		out, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode ledger: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
