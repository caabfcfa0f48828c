package notifier

import (
	"fmt"

	"github.com/pauljones0/free-asset-notifier/internal/config"
)

// New returns the back end selected by cfg.Notifier.
func New(cfg *config.Config) (Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		return NewSMTP(cfg.SMTP), nil
	case config.NotifierContacts:
		return NewContacts(cfg.EmailAPI), nil
	case config.NotifierTransactional:
		return NewTransactional(cfg.EmailAPI), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}
