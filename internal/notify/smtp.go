package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
)

const SMTPSenderName = "smtp"

var sendMail = smtp.SendMail

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	// Password is resolved through the secrets loader and never read from here directly.
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
}

type SMTPSender struct {
	addr string
	auth smtp.Auth
}

func NewSMTPSender(cfg SMTPConfig, password string) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}

	port := cfg.Port
	if port == 0 {
		port = 587
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, password, cfg.Host)
	}

	return &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		auth: auth,
	}, nil
}

func (s *SMTPSender) Name() string {
	return SMTPSenderName
}

// Send does not observe ctx: net/smtp has no context support.
func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	if err := sendMail(s.addr, s.auth, msg.From, msg.To, buildMIME(msg)); err != nil {
		return fmt.Errorf("sending mail via %s: %w", s.addr, err)
	}
	return nil
}
