package ports

import "context"

// Email is a rendered message / Message rendu
type Email struct {
	To      string
	Subject string
	HTML    string
}

// EmailSender delivers rendered emails / Délivre les emails rendus
// Implementations: SMTP relay, SendGrid API.
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}
