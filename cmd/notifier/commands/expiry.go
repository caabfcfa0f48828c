package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pauljones0/free-asset-notifier/internal/config"
	"github.com/pauljones0/free-asset-notifier/internal/schedule"
)

func init() {
	rootCmd.AddCommand(expiryCmd)
}

var expiryCmd = &cobra.Command{
	Use:   "expiry",
	Short: "Prints when the current free asset promotion expires.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadLocal(envFile)
		if err != nil {
			return err
		}
		next := schedule.NextOccurrence(cfg.ExpiryWeekday, cfg.ExpiryTime, cfg.ExpiryLocation, time.Now())
		fmt.Fprintln(cmd.OutOrStdout(), schedule.FormatExpiry(next, cfg.DisplayLocation))
		return nil
	},
}
