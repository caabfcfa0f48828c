package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pauljones0/free-asset-notifier/internal/schedule"
)

func setSMTPEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NOTIFIER", "smtp")
	t.Setenv("SENDER_EMAIL", "bot@example.com")
	t.Setenv("APP_PASSWORD", "app-secret")
	t.Setenv("RECEIVER_EMAIL", "a@example.com, b@example.com")
}

func TestLoad(t *testing.T) {
	setSMTPEnv(t)
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("RUN_CONTEXT", "")
	t.Setenv("GITHUB_EVENT_NAME", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.PromotionURL != "https://assetstore.unity.com/publisher-sale" {
		t.Errorf("Expected default promotion URL, got %s", cfg.PromotionURL)
	}
	if len(cfg.AllowedDomains) != 1 || cfg.AllowedDomains[0] != "assetstore.unity.com" {
		t.Errorf("Expected allowlist [assetstore.unity.com], got %v", cfg.AllowedDomains)
	}
	if cfg.Notifier != NotifierSMTP {
		t.Errorf("Expected smtp notifier, got %s", cfg.Notifier)
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("Expected SMTP port 587, got %d", cfg.SMTP.Port)
	}
	if cfg.SMTP.Host != "smtp.gmail.com" {
		t.Errorf("Expected default SMTP host, got %s", cfg.SMTP.Host)
	}
	if len(cfg.SMTP.Receivers) != 2 || cfg.SMTP.Receivers[1] != "b@example.com" {
		t.Errorf("Expected two trimmed receivers, got %v", cfg.SMTP.Receivers)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected default 30s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.FetchMode != FetchModeHTTP {
		t.Errorf("Expected http fetch mode, got %s", cfg.FetchMode)
	}
	if !cfg.PriceLookup {
		t.Error("Expected price lookup enabled by default")
	}
	if cfg.ExpiryWeekday != time.Thursday {
		t.Errorf("Expected Thursday expiry, got %s", cfg.ExpiryWeekday)
	}
	if cfg.ExpiryTime != (schedule.Clock{Hour: 8}) {
		t.Errorf("Expected 08:00 expiry, got %s", cfg.ExpiryTime)
	}
	if cfg.ExpiryLocation.String() != "America/Los_Angeles" {
		t.Errorf("Expected America/Los_Angeles, got %s", cfg.ExpiryLocation)
	}
	if cfg.DisplayLocation.String() != "America/Los_Angeles" || cfg.LocalLocation.String() != "America/Los_Angeles" {
		t.Errorf("Expected display and local zones to default to expiry zone, got %s / %s", cfg.DisplayLocation, cfg.LocalLocation)
	}
	if cfg.Trigger != TriggerManual {
		t.Errorf("Expected manual trigger by default, got %s", cfg.Trigger)
	}
	if cfg.LedgerPath != "savings.json" {
		t.Errorf("Expected default ledger path, got %s", cfg.LedgerPath)
	}
}

func TestLoad_MissingValues(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{name: "sender", unset: "SENDER_EMAIL"},
		{name: "app password", unset: "APP_PASSWORD"},
		{name: "receiver", unset: "RECEIVER_EMAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSMTPEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load("")
			if !errors.Is(err, ErrMissingValue) {
				t.Errorf("Load() error = %v, want ErrMissingValue", err)
			}
		})
	}
}

func TestLoad_Contacts(t *testing.T) {
	t.Setenv("NOTIFIER", "contacts")
	t.Setenv("EMAIL_API_KEY", "key-123")
	t.Setenv("CONTACT_LIST_ID", "7")
	t.Setenv("EMAIL_API_BASE_URL", "https://api.example.com/v3/")
	t.Setenv("CONTACT_BATCH_SIZE", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.EmailAPI.BaseURL != "https://api.example.com/v3" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.EmailAPI.BaseURL)
	}
	if cfg.EmailAPI.BatchSize != 100 {
		t.Errorf("Expected default batch size 100, got %d", cfg.EmailAPI.BatchSize)
	}

	t.Setenv("CONTACT_LIST_ID", "")
	if _, err := Load(""); !errors.Is(err, ErrMissingValue) {
		t.Errorf("Load() without CONTACT_LIST_ID error = %v, want ErrMissingValue", err)
	}
}

func TestLoad_Transactional(t *testing.T) {
	t.Setenv("NOTIFIER", "transactional")
	t.Setenv("EMAIL_API_KEY", "key-123")
	t.Setenv("CONTACT_LIST_ID", "7")
	t.Setenv("SENDER_EMAIL", "bot@example.com")
	t.Setenv("EMAIL_TEMPLATE_ID", "")

	if _, err := Load(""); !errors.Is(err, ErrMissingValue) {
		t.Fatalf("Load() without template error = %v, want ErrMissingValue", err)
	}

	t.Setenv("EMAIL_TEMPLATE_ID", "abc")
	if _, err := Load(""); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Load() with bad template error = %v, want ErrInvalidValue", err)
	}

	t.Setenv("EMAIL_TEMPLATE_ID", "42")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.EmailAPI.TemplateID != 42 {
		t.Errorf("Expected template 42, got %d", cfg.EmailAPI.TemplateID)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "NOTIFIER", value: "pigeon"},
		{key: "FETCH_MODE", value: "curl"},
		{key: "HTTP_TIMEOUT", value: "soon"},
		{key: "EXPIRY_WEEKDAY", value: "Someday"},
		{key: "EXPIRY_TIME", value: "8am"},
		{key: "EXPIRY_TIMEZONE", value: "Mars/Olympus_Mons"},
		{key: "PRICE_LOOKUP", value: "maybe"},
		{key: "PROMOTION_URL", value: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setSMTPEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			if !errors.Is(err, ErrInvalidValue) {
				t.Errorf("Load() with %s=%q error = %v, want ErrInvalidValue", tt.key, tt.value, err)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "NOTIFIER=smtp\nSENDER_EMAIL=file@example.com\nAPP_PASSWORD=file-secret\nRECEIVER_EMAIL=r@example.com\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// Register for cleanup so values godotenv sets do not leak into other tests.
	for _, key := range []string{"NOTIFIER", "SENDER_EMAIL", "APP_PASSWORD", "RECEIVER_EMAIL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.SMTP.Sender != "file@example.com" {
		t.Errorf("Expected sender from env file, got %s", cfg.SMTP.Sender)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Load() should fail when the named env file does not exist")
	}
}

func TestLoadLocal_NoCredentials(t *testing.T) {
	for _, key := range []string{"NOTIFIER", "SENDER_EMAIL", "APP_PASSWORD", "RECEIVER_EMAIL", "EMAIL_API_KEY", "CONTACT_LIST_ID"} {
		t.Setenv(key, "")
	}
	t.Setenv("LEDGER_PATH", "data/savings.json")
	t.Setenv("EXPIRY_WEEKDAY", "friday")

	cfg, err := LoadLocal("")
	if err != nil {
		t.Fatalf("LoadLocal() returned unexpected error: %v", err)
	}
	if cfg.LedgerPath != "data/savings.json" {
		t.Errorf("Expected ledger path from env, got %s", cfg.LedgerPath)
	}
	if cfg.ExpiryWeekday != time.Friday {
		t.Errorf("Expected Friday expiry, got %s", cfg.ExpiryWeekday)
	}

	if _, err := Load(""); !errors.Is(err, ErrMissingValue) {
		t.Errorf("Load() without credentials = %v, want ErrMissingValue", err)
	}

	t.Setenv("EXPIRY_TIMEZONE", "Mars/Olympus_Mons")
	if _, err := LoadLocal(""); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("LoadLocal() with bad timezone = %v, want ErrInvalidValue", err)
	}
}

func TestParseTrigger(t *testing.T) {
	tests := map[string]Trigger{
		"schedule":          TriggerScheduled,
		"scheduled":         TriggerScheduled,
		" Cron ":            TriggerScheduled,
		"workflow_dispatch": TriggerManual,
		"":                  TriggerManual,
	}
	for in, want := range tests {
		if got := ParseTrigger(in); got != want {
			t.Errorf("ParseTrigger(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestTriggerFromEnv_GitHubFallback(t *testing.T) {
	t.Setenv("RUN_CONTEXT", "")
	t.Setenv("GITHUB_EVENT_NAME", "schedule")
	if got := TriggerFromEnv(); got != TriggerScheduled {
		t.Errorf("TriggerFromEnv() = %s, want scheduled", got)
	}

	t.Setenv("RUN_CONTEXT", "manual")
	if got := TriggerFromEnv(); got != TriggerManual {
		t.Errorf("TriggerFromEnv() with RUN_CONTEXT = %s, want manual", got)
	}
}
