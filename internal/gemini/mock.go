package gemini

import "context"

// MockClient is a configurable test double.
type MockClient struct {
	GenerateTextFunc  func(ctx context.Context, model, prompt string) (string, error)
	GenerateImageFunc func(ctx context.Context, model, prompt string) ([]byte, error)
}

func (m *MockClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, model, prompt)
	}
	return "mock text", nil
}

func (m *MockClient) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, model, prompt)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}
