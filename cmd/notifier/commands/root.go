package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pauljones0/free-asset-notifier/internal/config"
	"github.com/pauljones0/free-asset-notifier/internal/ledger"
	"github.com/pauljones0/free-asset-notifier/internal/models"
	"github.com/pauljones0/free-asset-notifier/internal/notifier"
	"github.com/pauljones0/free-asset-notifier/internal/processor"
	"github.com/pauljones0/free-asset-notifier/internal/scraper"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitUnexpected  = 1
	ExitConfig      = 2
	ExitNoPromotion = 3
	ExitNoContacts  = 4
)

var (
	envFile string
	trigger string
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:           "free-asset-notifier",
	Short:         "Mails subscribers this week's free asset and keeps a running savings ledger.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}

		opts := processor.RunOptions{
			Trigger: cfg.Trigger,
			DryRun:  dryRun,
		}
		if cmd.Flags().Changed("trigger") {
			opts.Trigger = config.ParseTrigger(trigger)
		}

		n, err := notifier.New(cfg)
		if err != nil {
			return err
		}
		source := scraper.New(cfg, scraper.LoadConfig(cfg.SelectorsPath))
		store := ledger.NewFileStore(cfg.LedgerPath)

		outcome, err := processor.New(source, n, store, cfg).Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		slog.Info("Run finished", "outcome", outcome, "trigger", opts.Trigger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file before reading configuration.")
	rootCmd.Flags().StringVar(&trigger, "trigger", "", "Run context: scheduled or manual. Defaults to RUN_CONTEXT / GITHUB_EVENT_NAME.")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render the notification without delivering it or touching the ledger.")
}

// ExecuteContext runs the command tree and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := ExitCode(err)
		slog.Error("Run failed", "error", err, "exit_code", code)
		return code
	}
	return ExitOK
}

// ExitCode maps an error returned by a command to its process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, config.ErrMissingValue), errors.Is(err, config.ErrInvalidValue):
		return ExitConfig
	case errors.Is(err, models.ErrPromotionNotFound), errors.Is(err, models.ErrIncompletePromotion):
		return ExitNoPromotion
	case errors.Is(err, models.ErrNoContacts):
		return ExitNoContacts
	default:
		return ExitUnexpected
	}
}
