// Package ledger persists the running savings totals between runs.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pauljones0/free-asset-notifier/internal/models"
	"github.com/pauljones0/free-asset-notifier/internal/schedule"
	"github.com/pauljones0/free-asset-notifier/internal/util"
	"github.com/pauljones0/free-asset-notifier/internal/validator"
)

// FileStore reads and writes the ledger as a single JSON document.
type FileStore struct {
	path      string
	validator *validator.Validator
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, validator: validator.New()}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns the stored ledger. A missing, unreadable or malformed file yields
// a zero ledger; the degradation is logged, never returned.
func (s *FileStore) Load() models.Ledger {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("Ledger file not found, starting from zero", "path", s.path)
		} else {
			slog.Warn("Ledger file unreadable, starting from zero", "path", s.path, "error", err)
		}
		return models.Ledger{}
	}

	var l models.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		slog.Warn("Ledger file malformed, starting from zero", "path", s.path, "error", err)
		return models.Ledger{}
	}
	if err := s.validator.ValidateStruct(l); err != nil {
		slog.Warn("Ledger file holds invalid totals, starting from zero", "path", s.path, "error", err)
		return models.Ledger{}
	}
	if l.LastRunDate != "" {
		if _, err := time.Parse(schedule.DateLayout, l.LastRunDate); err != nil {
			slog.Warn("Ledger last_run_date unparseable, clearing it", "value", l.LastRunDate)
			l.LastRunDate = ""
		}
	}
	return l
}

// Store overwrites the ledger file with l, monetary fields rounded to cents.
func (s *FileStore) Store(l models.Ledger) error {
	l.TotalSavings = util.RoundCents(l.TotalSavings)
	l.TotalCumulativeSavings = util.RoundCents(l.TotalCumulativeSavings)

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write ledger %s: %w", s.path, err)
	}
	return nil
}

// RecordRun folds one delivered promotion into l. Totals only move when a
// positive price was found; the run date is always stamped.
func RecordRun(l models.Ledger, price float64, sent int, date string) models.Ledger {
	if price > 0 {
		if sent < 0 {
			sent = 0
		}
		l.TotalSavings = util.RoundCents(l.TotalSavings + price)
		l.TotalAssets++
		l.TotalCumulativeSavings = util.RoundCents(l.TotalCumulativeSavings + price*float64(sent))
		l.TotalEmailsSent += sent
	}
	l.LastRunDate = date
	return l
}
