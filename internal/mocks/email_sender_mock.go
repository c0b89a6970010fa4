package mocks

import (
	"context"
	"sync"

	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.EmailSender = (*MockEmailSender)(nil)

// MockEmailSender records every message it is asked to send
type MockEmailSender struct {
	mu sync.Mutex

	// SendFunc overrides the result when set
	SendFunc func(ctx context.Context, msg ports.Email) error

	Sent []ports.Email
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (m *MockEmailSender) Send(ctx context.Context, msg ports.Email) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	fn := m.SendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, msg)
	}
	return nil
}

// Recipients returns addresses in send order
func (m *MockEmailSender) Recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Sent))
	for _, e := range m.Sent {
		out = append(out, e.To)
	}
	return out
}
