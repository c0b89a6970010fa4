package mocks

import (
	"context"
	"sync"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.ActivityPublisher = (*MockPublisher)(nil)

// MockPublisher records published activities
type MockPublisher struct {
	mu         sync.Mutex
	Activities []domain.Activity
	Err        error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, activity domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Activities = append(m.Activities, activity)
	return m.Err
}

// Types returns published activity types in order
func (m *MockPublisher) Types() []domain.ActivityType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ActivityType, 0, len(m.Activities))
	for _, a := range m.Activities {
		out = append(out, a.Type)
	}
	return out
}

// Last returns the latest activity
func (m *MockPublisher) Last() (domain.Activity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Activities) == 0 {
		return domain.Activity{}, false
	}
	return m.Activities[len(m.Activities)-1], true
}
