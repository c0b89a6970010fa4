package service

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

// Notification providers / Fournisseurs de notifications
const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
)

var _ ports.EmailSender = (*SMTPSender)(nil)

// NewEmailSender picks the configured provider, nil when disabled / Choisit le fournisseur configuré, nil si désactivé
func NewEmailSender(cfg *config.Config) (ports.EmailSender, error) {
	if !cfg.Notifications.Enabled {
		return nil, nil
	}
	switch cfg.Notifications.Provider {
	case ProviderSendGrid:
		return NewSendGridSender(cfg.Notifications.SendGridAPIKey, cfg.SMTP.From), nil
	case ProviderSMTP, "":
		return NewSMTPSender(cfg.SMTP)
	default:
		return nil, fmt.Errorf("unknown notification provider %q", cfg.Notifications.Provider)
	}
}

// SMTPSender relays HTML mail over SMTP / Relaie les emails HTML par SMTP
// Loopback relays (mailpit in development) are spoken to in plain text, others over implicit TLS.
type SMTPSender struct {
	cfg   config.SMTPConfig
	plain bool
	now   func() time.Time
}

// NewSMTPSender checks the relay settings / Vérifie les paramètres du relais
// An empty host targets a local catcher on localhost:1025.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		cfg.Host, cfg.Port = "localhost", 1025
		if cfg.From == "" {
			cfg.From = "familyhub@localhost"
		}
	}
	if err := checkRelay(cfg); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &SMTPSender{cfg: cfg, plain: isLoopback(cfg.Host), now: time.Now}, nil
}

func checkRelay(c config.SMTPConfig) error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, errors.New("port must be between 1 and 65535"))
	}
	if _, err := mail.ParseAddress(c.From); err != nil {
		errs = append(errs, fmt.Errorf("from address %q: %w", c.From, err))
	}
	return errors.Join(errs...)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Send delivers one message, ctx bounds the whole exchange / Délivre un message
func (s *SMTPSender) Send(ctx context.Context, msg ports.Email) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer client.Close()

	if s.cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(s.cfg.From, msg, s.now())); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	return client.Quit()
}

func (s *SMTPSender) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{}
	if s.plain {
		return dialer.DialContext(ctx, "tcp", addr)
	}
	tlsDialer := &tls.Dialer{
		NetDialer: dialer,
		Config:    &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12},
	}
	return tlsDialer.DialContext(ctx, "tcp", addr)
}

// buildMessage renders headers in a stable order / Construit le message avec des en-têtes ordonnés
func buildMessage(from string, msg ports.Email, now time.Time) []byte {
	var b strings.Builder
	headers := [][2]string{
		{"From", from},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/html; charset="utf-8"`},
	}
	for _, h := range headers {
		b.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
