package service

import (
	"context"
	"fmt"

	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var _ ports.EmailSender = (*SendGridSender)(nil)

// SendGridSender sends emails through the SendGrid API / Envoie des emails via l'API SendGrid
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridSender creates SendGrid sender / Crée l'expéditeur SendGrid
func NewSendGridSender(apiKey, from string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("FamilyHub", from),
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg ports.Email) error {
	message := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail("", msg.To), msg.Subject, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
