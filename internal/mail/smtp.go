package mail

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer отправляет письма через SMTP.
// Реализует интерфейс worker.Mailer. Ошибки транспорта считаются
// transient — worker повторит задачу.
type SMTPMailer struct {
	client *gomail.Client
	from   string
	logger *slog.Logger
}

// SMTPConfig — конфигурация SMTP-клиента.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPConfigFromEnv читает конфигурацию из окружения
// (SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM).
func SMTPConfigFromEnv() SMTPConfig {
	cfg := SMTPConfig{
		Host: os.Getenv("SMTP_HOST"),
		Port: 587,
		From: os.Getenv("SMTP_FROM"),
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	cfg.Username = os.Getenv("SMTP_USERNAME")
	cfg.Password = os.Getenv("SMTP_PASSWORD")
	if cfg.From == "" {
		cfg.From = "noreply@bazaar.local"
	}
	return cfg
}

// NewSMTPMailer создаёт SMTP-клиент.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("new smtp client: %w", err)
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
		logger: logger,
	}, nil
}

// Send отправляет одно письмо всем получателям.
func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string, isHTML bool) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)

	if isHTML {
		msg.SetBodyString(gomail.TypeTextHTML, body)
	} else {
		msg.SetBodyString(gomail.TypeTextPlain, body)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	m.logger.Debug("email sent", "recipients", len(to), "subject", subject)
	return nil
}
