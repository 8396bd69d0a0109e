// Package gemini is a direct HTTP client for the Google generative language
// API, covering the text and image generation calls the processor needs.
package gemini

import (
	"context"
	"fmt"
)

// Client generates text and images from prompts.
type Client interface {
	// GenerateText asks model for a plain-text completion of prompt.
	GenerateText(ctx context.Context, model, prompt string) (string, error)
	// GenerateImage asks model to render prompt and returns raw image bytes.
	GenerateImage(ctx context.Context, model, prompt string) ([]byte, error)
}

// ProviderError is a failure reported by the generative API.
type ProviderError struct {
	Model   string
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("gemini %s: API error (%d): %s", e.Model, e.Code, e.Message)
	}
	return fmt.Sprintf("gemini %s: %s", e.Model, e.Message)
}

// StatusCode reports the upstream HTTP status, 0 when the request never
// reached the API.
func (e *ProviderError) StatusCode() int { return e.Code }
