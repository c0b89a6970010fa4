package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

var helpRequestTemplate = template.Must(template.ParseFS(templateFS, "templates/help_request.html"))

const (
	notifyPageSize = 100
	notifyTimeout  = 30 * time.Second
)

// NotificationMetricsRecorder records notification sends / Enregistre les envois de notifications
type NotificationMetricsRecorder interface {
	RecordNotification(provider, status string)
}

// Notifier emails family members in the background / Envoie des emails aux membres en arrière-plan
type Notifier struct {
	sender      ports.EmailSender
	users       ports.UserReader
	provider    string
	frontendURL string
	metrics     NotificationMetricsRecorder
	wg          sync.WaitGroup
}

// NewNotifier creates notifier, a nil sender disables it / Crée le notificateur, désactivé sans expéditeur
func NewNotifier(sender ports.EmailSender, users ports.UserReader, provider, frontendURL string, metrics NotificationMetricsRecorder) *Notifier {
	return &Notifier{
		sender:      sender,
		users:       users,
		provider:    provider,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		metrics:     metrics,
	}
}

// HelpRequested tells every other member about a new request / Prévient les autres membres d'une nouvelle demande
func (n *Notifier) HelpRequested(ctx context.Context, req *domain.HelpRequest) {
	if n == nil || n.sender == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		n.sendHelpRequested(ctx, req)
	}()
}

// Wait blocks until queued notifications are sent / Attend la fin des envois en cours
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}

func (n *Notifier) sendHelpRequested(ctx context.Context, req *domain.HelpRequest) {
	subject := fmt.Sprintf("%s needs a hand: %s", req.Requester.DisplayName, req.Title)

	for offset := 0; ; offset += notifyPageSize {
		users, total, err := n.users.List(ctx, offset, notifyPageSize)
		if err != nil {
			slog.Error("failed to list recipients", "help_request_id", req.ID, "err", err)
			return
		}

		for _, user := range users {
			if user.ID == req.Requester.ID {
				continue
			}
			body, err := n.renderHelpRequest(user, req)
			if err != nil {
				slog.Error("failed to render notification", "help_request_id", req.ID, "err", err)
				return
			}
			n.send(ctx, user.Email, subject, body)
		}

		if len(users) == 0 || offset+notifyPageSize >= total {
			return
		}
	}
}

func (n *Notifier) send(ctx context.Context, to, subject, body string) {
	status := "sent"
	if err := n.sender.Send(ctx, ports.Email{To: to, Subject: subject, HTML: body}); err != nil {
		status = "failed"
		slog.Warn("failed to send notification", "provider", n.provider, "err", err)
	}
	if n.metrics != nil {
		n.metrics.RecordNotification(n.provider, status)
	}
}

func (n *Notifier) renderHelpRequest(recipient *domain.User, req *domain.HelpRequest) (string, error) {
	data := struct {
		RecipientName string
		RequesterName string
		Title         string
		Description   string
		NeededBy      string
		Link          string
	}{
		RecipientName: recipient.DisplayName,
		RequesterName: req.Requester.DisplayName,
		Title:         req.Title,
		Description:   req.Description,
		Link:          fmt.Sprintf("%s/help-requests/%d", n.frontendURL, req.ID),
	}
	if req.NeededBy != nil {
		data.NeededBy = req.NeededBy.Format("Mon 2 Jan 2006 15:04 MST")
	}

	var buf bytes.Buffer
	if err := helpRequestTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
