package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pauljones0/free-asset-notifier/internal/schedule"
)

var (
	// ErrMissingValue wraps every "required variable not set" error.
	ErrMissingValue = errors.New("missing required configuration value")
	// ErrInvalidValue wraps every "variable set but unusable" error.
	ErrInvalidValue = errors.New("invalid configuration value")
)

type NotifierKind string

const (
	NotifierSMTP          NotifierKind = "smtp"
	NotifierContacts      NotifierKind = "contacts"
	NotifierTransactional NotifierKind = "transactional"
)

type FetchMode string

const (
	FetchModeHTTP    FetchMode = "http"
	FetchModeBrowser FetchMode = "browser"
)

// Trigger tells a cron-fired run apart from one started by hand. Only
// scheduled runs go through the run gate.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

type Config struct {
	PromotionURL   string
	SiteOrigin     string
	AllowedDomains []string
	SelectorsPath  string
	FetchMode      FetchMode
	HTTPTimeout    time.Duration
	UserAgent      string
	PriceLookup    bool

	ExpiryWeekday   time.Weekday
	ExpiryTime      schedule.Clock
	ExpiryLocation  *time.Location
	DisplayLocation *time.Location
	LocalLocation   *time.Location // ledger dates and the run gate
	RunCutoff       schedule.Clock
	Trigger         Trigger

	LedgerPath string

	Notifier NotifierKind
	SMTP     SMTPConfig
	EmailAPI EmailAPIConfig
}

type SMTPConfig struct {
	Host        string
	Port        int
	Sender      string
	AppPassword string
	Receivers   []string
}

type EmailAPIConfig struct {
	BaseURL       string
	APIKey        string
	ListID        string
	Sender        string
	TemplateID    int64
	BatchSize     int
	RatePerSecond float64
}

// Load reads configuration from the environment. When envFile is set it must
// exist; otherwise a .env in the working directory is picked up if present.
// Variables already in the environment win over the file.
func Load(envFile string) (*Config, error) {
	cfg, err := LoadLocal(envFile)
	if err != nil {
		return nil, err
	}

	cfg.PromotionURL = getenv("PROMOTION_URL", "https://assetstore.unity.com/publisher-sale")
	cfg.SiteOrigin = getenv("SITE_ORIGIN", "https://assetstore.unity.com")
	cfg.SelectorsPath = os.Getenv("SELECTORS_CONFIG_PATH")
	cfg.UserAgent = getenv("USER_AGENT", "Mozilla/5.0")

	if cfg.AllowedDomains, err = allowedDomains(cfg.PromotionURL, cfg.SiteOrigin); err != nil {
		return nil, err
	}

	switch mode := FetchMode(strings.ToLower(getenv("FETCH_MODE", string(FetchModeHTTP)))); mode {
	case FetchModeHTTP, FetchModeBrowser:
		cfg.FetchMode = mode
	default:
		return nil, fmt.Errorf("%w: FETCH_MODE %q (want http or browser)", ErrInvalidValue, mode)
	}

	timeoutStr := getenv("HTTP_TIMEOUT", "30s")
	if cfg.HTTPTimeout, err = time.ParseDuration(timeoutStr); err != nil || cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("%w: HTTP_TIMEOUT %q", ErrInvalidValue, timeoutStr)
	}

	if cfg.PriceLookup, err = parseBool("PRICE_LOOKUP", true); err != nil {
		return nil, err
	}

	cfg.Notifier = NotifierKind(strings.ToLower(getenv("NOTIFIER", string(NotifierSMTP))))
	if err := cfg.loadNotifier(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadLocal reads only the schedule, trigger and ledger settings. Commands that
// never fetch or deliver use it so they run without notifier credentials.
func LoadLocal(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Ignoring unreadable .env file", "error", err)
	}

	cfg := &Config{
		LedgerPath: getenv("LEDGER_PATH", "savings.json"),
	}
	if err := cfg.loadSchedule(); err != nil {
		return nil, err
	}
	cfg.Trigger = TriggerFromEnv()
	return cfg, nil
}

func (c *Config) loadSchedule() error {
	var err error
	weekdayStr := getenv("EXPIRY_WEEKDAY", "Thursday")
	if c.ExpiryWeekday, err = schedule.ParseWeekday(weekdayStr); err != nil {
		return fmt.Errorf("%w: EXPIRY_WEEKDAY: %v", ErrInvalidValue, err)
	}
	if c.ExpiryTime, err = schedule.ParseClock(getenv("EXPIRY_TIME", "08:00")); err != nil {
		return fmt.Errorf("%w: EXPIRY_TIME: %v", ErrInvalidValue, err)
	}
	if c.RunCutoff, err = schedule.ParseClock(getenv("RUN_CUTOFF", "08:00")); err != nil {
		return fmt.Errorf("%w: RUN_CUTOFF: %v", ErrInvalidValue, err)
	}
	if c.ExpiryLocation, err = loadLocation("EXPIRY_TIMEZONE", "America/Los_Angeles"); err != nil {
		return err
	}
	if c.LocalLocation, err = loadLocation("LOCAL_TIMEZONE", c.ExpiryLocation.String()); err != nil {
		return err
	}
	if c.DisplayLocation, err = loadLocation("DISPLAY_TIMEZONE", c.ExpiryLocation.String()); err != nil {
		return err
	}
	return nil
}

func (c *Config) loadNotifier() error {
	switch c.Notifier {
	case NotifierSMTP:
		port, err := parseInt("SMTP_PORT", 465)
		if err != nil {
			return err
		}
		c.SMTP = SMTPConfig{
			Host:        getenv("SMTP_HOST", "smtp.gmail.com"),
			Port:        port,
			Sender:      os.Getenv("SENDER_EMAIL"),
			AppPassword: os.Getenv("APP_PASSWORD"),
			Receivers:   splitList(os.Getenv("RECEIVER_EMAIL")),
		}
		if err := require("SENDER_EMAIL", c.SMTP.Sender); err != nil {
			return err
		}
		if err := require("APP_PASSWORD", c.SMTP.AppPassword); err != nil {
			return err
		}
		if len(c.SMTP.Receivers) == 0 {
			return fmt.Errorf("%w: RECEIVER_EMAIL", ErrMissingValue)
		}

	case NotifierContacts, NotifierTransactional:
		batchSize, err := parseInt("CONTACT_BATCH_SIZE", 100)
		if err != nil {
			return err
		}
		if batchSize <= 0 {
			return fmt.Errorf("%w: CONTACT_BATCH_SIZE must be positive", ErrInvalidValue)
		}
		rateStr := getenv("CONTACT_RATE_PER_SECOND", "5")
		ratePerSecond, err := strconv.ParseFloat(rateStr, 64)
		if err != nil || ratePerSecond <= 0 {
			return fmt.Errorf("%w: CONTACT_RATE_PER_SECOND %q", ErrInvalidValue, rateStr)
		}
		c.EmailAPI = EmailAPIConfig{
			BaseURL:       strings.TrimRight(getenv("EMAIL_API_BASE_URL", "https://api.brevo.com/v3"), "/"),
			APIKey:        os.Getenv("EMAIL_API_KEY"),
			ListID:        os.Getenv("CONTACT_LIST_ID"),
			Sender:        os.Getenv("SENDER_EMAIL"),
			BatchSize:     batchSize,
			RatePerSecond: ratePerSecond,
		}
		if err := require("EMAIL_API_KEY", c.EmailAPI.APIKey); err != nil {
			return err
		}
		if err := require("CONTACT_LIST_ID", c.EmailAPI.ListID); err != nil {
			return err
		}
		if c.Notifier == NotifierTransactional {
			if err := require("SENDER_EMAIL", c.EmailAPI.Sender); err != nil {
				return err
			}
			templateStr := os.Getenv("EMAIL_TEMPLATE_ID")
			if err := require("EMAIL_TEMPLATE_ID", templateStr); err != nil {
				return err
			}
			if c.EmailAPI.TemplateID, err = strconv.ParseInt(templateStr, 10, 64); err != nil {
				return fmt.Errorf("%w: EMAIL_TEMPLATE_ID %q", ErrInvalidValue, templateStr)
			}
		}

	default:
		return fmt.Errorf("%w: NOTIFIER %q (want smtp, contacts or transactional)", ErrInvalidValue, c.Notifier)
	}
	return nil
}

// TriggerFromEnv reads RUN_CONTEXT, falling back to GITHUB_EVENT_NAME.
// Anything other than a schedule event counts as manual.
func TriggerFromEnv() Trigger {
	v := os.Getenv("RUN_CONTEXT")
	if v == "" {
		v = os.Getenv("GITHUB_EVENT_NAME")
	}
	return ParseTrigger(v)
}

func ParseTrigger(v string) Trigger {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "schedule", "scheduled", "cron":
		return TriggerScheduled
	default:
		return TriggerManual
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func require(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingValue, key)
	}
	return nil
}

func parseInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidValue, key, v)
	}
	return parsed, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s %q", ErrInvalidValue, key, v)
	}
	return parsed, nil
}

func loadLocation(key, def string) (*time.Location, error) {
	name := getenv(key, def)
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, key, name, err)
	}
	return loc, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// allowedDomains limits fetching to the hosts of the promotion page and the site origin.
func allowedDomains(rawURLs ...string) ([]string, error) {
	var hosts []string
	seen := make(map[string]bool)
	for _, raw := range rawURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			return nil, fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidValue, raw)
		}
		if h := u.Hostname(); !seen[h] {
			seen[h] = true
			hosts = append(hosts, h)
		}
	}
	return hosts, nil
}
