package ledger

import (
	"time"

	"github.com/pauljones0/free-asset-notifier/internal/models"
	"github.com/pauljones0/free-asset-notifier/internal/schedule"
)

// Gate suppresses duplicate or early scheduled runs. A day is either Idle or
// RanToday, keyed by the ledger's last_run_date.
type Gate struct {
	Weekday  time.Weekday
	Cutoff   schedule.Clock
	Location *time.Location
}

// ShouldRunNow reports whether a scheduled run may proceed at now.
func (g Gate) ShouldRunNow(now time.Time, l models.Ledger) bool {
	local := now.In(g.Location)
	if local.Weekday() != g.Weekday {
		return false
	}
	if !g.Cutoff.Reached(local) {
		return false
	}
	return l.LastRunDate != schedule.DateKey(now, g.Location)
}
