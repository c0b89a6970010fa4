package mocks

import "sync"

// MockMetrics is a mock implementation of metrics recorder for testing
type MockMetrics struct {
	mu sync.Mutex

	AccountLockoutCalls int
	RegistrationCalls   int
	ContentWrites       map[string]int // "kind:operation" -> count
	Reactions           map[string]int
	Activities          map[string]int
	CacheLookups        map[string]int
	Notifications       map[string]int // "provider:status" -> count
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		ContentWrites: make(map[string]int),
		Reactions:     make(map[string]int),
		Activities:    make(map[string]int),
		CacheLookups:  make(map[string]int),
		Notifications: make(map[string]int),
	}
}

func (m *MockMetrics) RecordAccountLockout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AccountLockoutCalls++
}

func (m *MockMetrics) RecordRegistration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegistrationCalls++
}

func (m *MockMetrics) RecordContentWrite(kind, operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContentWrites[kind+":"+operation]++
}

func (m *MockMetrics) RecordReaction(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reactions[kind]++
}

func (m *MockMetrics) RecordActivity(activityType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Activities[activityType]++
}

func (m *MockMetrics) RecordCacheLookup(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheLookups[result]++
}

func (m *MockMetrics) RecordNotification(provider, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications[provider+":"+status]++
}

// Count reads a counter map under lock
func (m *MockMetrics) Count(counters map[string]int, key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return counters[key]
}
