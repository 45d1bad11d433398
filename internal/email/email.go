package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bromosky/aventra/config"
	"github.com/wneessen/go-mail"
)

// Sender delivers plain-text mail over SMTP with mandatory STARTTLS.
type Sender struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	deliver  func(ctx context.Context, msg *mail.Msg) error
}

func NewSender(cfg config.SMTPConfig) *Sender {
	s := &Sender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: strings.TrimSpace(cfg.Email),
		password: strings.TrimSpace(cfg.AppPassword),
		timeout:  cfg.Timeout(),
	}
	s.deliver = s.dialAndSend
	return s
}

// Enabled reports whether SMTP credentials are configured.
func (s *Sender) Enabled() bool {
	return s.username != "" && s.password != ""
}

// Send is a no-op without credentials or recipient.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if !s.Enabled() || to == "" {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(s.username); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return s.deliver(ctx, msg)
}

func (s *Sender) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if s.timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.timeout))
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
