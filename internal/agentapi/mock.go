package agentapi

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	CreateSessionFunc func(ctx context.Context, userID string) (string, error)
	StreamQueryFunc   func(ctx context.Context, userID, sessionID, message string, onFragment FragmentFunc) error
}

func (m *MockClient) CreateSession(ctx context.Context, userID string) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "mock-session", nil
}

func (m *MockClient) StreamQuery(ctx context.Context, userID, sessionID, message string, onFragment FragmentFunc) error {
	if m.StreamQueryFunc != nil {
		return m.StreamQueryFunc(ctx, userID, sessionID, message, onFragment)
	}
	for _, text := range []string{"mock", "reply"} {
		if err := onFragment(text); err != nil {
			return err
		}
	}
	return nil
}
