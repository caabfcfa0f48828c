package processor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pauljones0/free-asset-notifier/internal/config"
	"github.com/pauljones0/free-asset-notifier/internal/ledger"
	"github.com/pauljones0/free-asset-notifier/internal/models"
	"github.com/pauljones0/free-asset-notifier/internal/notifier"
	"github.com/pauljones0/free-asset-notifier/internal/schedule"
	"github.com/pauljones0/free-asset-notifier/internal/validator"
)

// Outcome describes how a run ended when it did not fail.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeDelivered
	OutcomeDryRun
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDryRun:
		return "dry-run"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// RunOptions carries the per-invocation inputs. A zero Now means time.Now().
type RunOptions struct {
	Trigger config.Trigger
	Now     time.Time
	DryRun  bool
}

type Processor struct {
	source    PromotionSource
	notifier  Notifier
	store     LedgerStore
	config    *config.Config
	gate      ledger.Gate
	validator *validator.Validator
}

func New(source PromotionSource, n Notifier, store LedgerStore, cfg *config.Config) *Processor {
	return &Processor{
		source:   source,
		notifier: n,
		store:    store,
		config:   cfg,
		gate: ledger.Gate{
			Weekday:  cfg.ExpiryWeekday,
			Cutoff:   cfg.RunCutoff,
			Location: cfg.LocalLocation,
		},
		validator: validator.New(),
	}
}

// Run performs one notification pass: gate, fetch, validate, deliver and
// record. Errors wrap the models sentinels so callers can map them to exit
// codes. A failed ledger write is logged and does not fail the run.
func (p *Processor) Run(ctx context.Context, opts RunOptions) (Outcome, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	current := p.store.Load()

	if opts.Trigger == config.TriggerScheduled {
		if !p.gate.ShouldRunNow(now, current) {
			slog.Info("Run gate closed, skipping",
				"weekday", p.gate.Weekday,
				"cutoff", p.gate.Cutoff,
				"last_run_date", current.LastRunDate,
				"today", schedule.DateKey(now, p.gate.Location))
			return OutcomeSkipped, nil
		}
	} else {
		slog.Info("Manual trigger, bypassing run gate")
	}

	rec, err := p.source.FetchPromotion(ctx)
	if err != nil {
		slog.Error("Failed to fetch promotion", "error", err)
		return 0, fmt.Errorf("%w: %v", models.ErrPromotionNotFound, err)
	}
	if rec == nil {
		slog.Warn("Promotion block not found on page", "url", p.config.PromotionURL)
		return 0, models.ErrPromotionNotFound
	}

	if missing := p.validator.MissingFields(rec); len(missing) > 0 {
		slog.Error("Promotion record is incomplete", "fields", missing, "name", rec.Name)
		return 0, fmt.Errorf("%w: missing or invalid %s", models.ErrIncompletePromotion, strings.Join(missing, ", "))
	}

	expiresAt := schedule.NextOccurrence(p.config.ExpiryWeekday, p.config.ExpiryTime, p.config.ExpiryLocation, now)
	expiry := schedule.FormatExpiry(expiresAt, p.config.DisplayLocation)
	slog.Info("Promotion found", "name", rec.Name, "claim_url", rec.ClaimURL, "promo_code", rec.PromoCode, "expiry", expiry)

	var price float64
	if p.config.PriceLookup {
		price = p.source.FetchPrice(ctx, rec.ClaimURL)
		if price > 0 {
			slog.Info("Asset price found", "price", price)
		} else {
			slog.Warn("Asset price unavailable, savings totals will not change", "url", rec.ClaimURL)
		}
	}

	if opts.DryRun {
		preview, err := notifier.Preview(*rec, expiry)
		if err != nil {
			return 0, fmt.Errorf("failed to render preview: %w", err)
		}
		slog.Info("Dry run, nothing delivered or stored", "price", price, "preview", preview)
		return OutcomeDryRun, nil
	}

	res, err := p.notifier.Deliver(ctx, *rec, expiry)
	if err != nil {
		if res.Recipients > 0 {
			// Some subscribers were already mailed; stamp today so the gate
			// blocks a repeat scheduled run.
			runDate := schedule.DateKey(now, p.config.LocalLocation)
			slog.Error("Notification partially delivered, recording run",
				"recipients", res.Recipients, "run_date", runDate, "error", err)
			p.record(current, price, res.Recipients, runDate)
		}
		return 0, fmt.Errorf("failed to deliver notification: %w", err)
	}
	slog.Info("Notification delivered", "recipients", res.Recipients, "notifier", p.config.Notifier)

	p.record(current, price, res.Recipients, schedule.DateKey(now, p.config.LocalLocation))
	return OutcomeDelivered, nil
}

// record folds the delivery into the ledger and stores it. A failed write is
// logged only.
func (p *Processor) record(current models.Ledger, price float64, recipients int, runDate string) {
	updated := ledger.RecordRun(current, price, recipients, runDate)
	if err := p.store.Store(updated); err != nil {
		slog.Error("Failed to store savings ledger", "error", err)
		return
	}
	slog.Info("Savings ledger updated",
		"total_savings", updated.TotalSavings,
		"total_assets", updated.TotalAssets,
		"total_cumulative_savings", updated.TotalCumulativeSavings,
		"total_emails_sent", updated.TotalEmailsSent,
		"last_run_date", updated.LastRunDate)
}
