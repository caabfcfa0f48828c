package models

// Ledger is the running savings record persisted between runs.
type Ledger struct {
	TotalSavings           float64 `json:"total_savings" validate:"gte=0"`
	TotalAssets            int     `json:"total_assets" validate:"gte=0"`
	TotalCumulativeSavings float64 `json:"total_cumulative_savings" validate:"gte=0"`
	TotalEmailsSent        int     `json:"total_emails_sent" validate:"gte=0"`
	LastRunDate            string  `json:"last_run_date"` // YYYY-MM-DD in the local timezone
}
