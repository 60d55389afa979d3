package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/airecruiter/internal/apperr"
)

type Config struct {
	Provider string      `mapstructure:"provider"`
	From     string      `mapstructure:"from"`
	To       []string    `mapstructure:"to"`
	SMTP     SMTPConfig  `mapstructure:"smtp"`
	Gmail    GmailConfig `mapstructure:"gmail"`
}

// NewSender builds the sender named by cfg.Provider. smtpPassword is only used
// by the smtp provider.
func NewSender(ctx context.Context, cfg Config, smtpPassword string) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", SMTPSenderName:
		s, err := NewSMTPSender(cfg.SMTP, smtpPassword)
		if err != nil {
			return nil, apperr.Configuration("email", err)
		}
		return s, nil
	case GmailSenderName:
		s, err := NewGmailSender(ctx, cfg.Gmail)
		if err != nil {
			return nil, apperr.Configuration("email", err)
		}
		return s, nil
	default:
		return nil, apperr.Configuration("email", fmt.Errorf("unknown provider %q", cfg.Provider))
	}
}
