package services

import "sync"

// MockNotifier records notifications for assertions in tests.
type MockNotifier struct {
	mu    sync.Mutex
	Calls []MockNotification
	// Err, when set, is returned from every call to simulate delivery failure.
	Err error
}

// MockNotification captures one NotifyOrderCreated invocation.
type MockNotification struct {
	OrderID  uint
	UniqueID string
}

// NewMockNotifier creates an empty MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// NotifyOrderCreated records the call and returns the configured error.
func (m *MockNotifier) NotifyOrderCreated(orderID uint, uniqueID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockNotification{OrderID: orderID, UniqueID: uniqueID})
	return m.Err
}

// CallCount returns how many notifications were recorded.
func (m *MockNotifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
