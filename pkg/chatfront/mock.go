package chatfront

import (
	"context"
	"sync"
)

// RoleGrant records one AssignRole call on the mock
type RoleGrant struct {
	UserID int64
	RoleID int64
}

// MockClient is a mock chat gateway client for testing. It records
// gateway calls instead of sending them.
type MockClient struct {
	mu       sync.Mutex
	messages []Message
	purged   []int64
	grants   []RoleGrant
	cleared  []int64
	baseURL  string
	callErr  error
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithPostError sets an error to return from every gateway call
func WithPostError(err error) MockOption {
	return func(m *MockClient) {
		m.callErr = err
	}
}

// NewMockClient creates a new mock chat gateway client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{baseURL: "http://mock-gateway"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PostMessage records the message, or returns the configured error
func (m *MockClient) PostMessage(ctx context.Context, msg Message) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// PurgeChannel records the purged channel, or returns the configured error
func (m *MockClient) PurgeChannel(ctx context.Context, channelID int64) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged = append(m.purged, channelID)
	return nil
}

// AssignRole records the grant, or returns the configured error
func (m *MockClient) AssignRole(ctx context.Context, userID, roleID int64) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants = append(m.grants, RoleGrant{UserID: userID, RoleID: roleID})
	return nil
}

// ClearRole records the cleared role, or returns the configured error
func (m *MockClient) ClearRole(ctx context.Context, roleID int64) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, roleID)
	return nil
}

// Messages returns a copy of all recorded messages
func (m *MockClient) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// PurgedChannels returns a copy of all recorded channel purges
func (m *MockClient) PurgedChannels() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.purged))
	copy(out, m.purged)
	return out
}

// RoleGrants returns a copy of all recorded role grants
func (m *MockClient) RoleGrants() []RoleGrant {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RoleGrant, len(m.grants))
	copy(out, m.grants)
	return out
}

// ClearedRoles returns a copy of all recorded role clears
func (m *MockClient) ClearedRoles() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.cleared))
	copy(out, m.cleared)
	return out
}

// BaseURL returns the mock base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// SetBaseURL updates the mock base URL
func (m *MockClient) SetBaseURL(url string) {
	m.baseURL = url
}

// SetToken is a no-op on the mock
func (m *MockClient) SetToken(token string) {}

var _ Client = (*MockClient)(nil)
