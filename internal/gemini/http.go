package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// HTTPClient calls the generative language REST API with an API key.
type HTTPClient struct {
	apiKey      string
	baseURL     string
	textClient  *http.Client
	imageClient *http.Client
	log         *logging.Logger
}

// NewHTTPClient builds a client from config. Image calls get their own,
// longer timeout since rendering takes far longer than text completion.
func NewHTTPClient(cfg config.GeminiConfig, log *logging.Logger) *HTTPClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	textTimeout := time.Duration(cfg.TextTimeoutSeconds) * time.Second
	if textTimeout <= 0 {
		textTimeout = 120 * time.Second
	}
	imageTimeout := time.Duration(cfg.ImageTimeoutSeconds) * time.Second
	if imageTimeout <= 0 {
		imageTimeout = 300 * time.Second
	}

	return &HTTPClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		textClient:  &http.Client{Timeout: textTimeout},
		imageClient: &http.Client{Timeout: imageTimeout},
		log:         log.Sub("gemini"),
	}
}

func (g *HTTPClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
	}

	resp, err := g.generateContent(ctx, g.textClient, model, body)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, part := range candidateParts(resp) {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", &ProviderError{Model: model, Message: "response carried no text"}
	}
	return text.String(), nil
}

func (g *HTTPClient) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseModalities": []string{"TEXT", "IMAGE"},
		},
	}

	resp, err := g.generateContent(ctx, g.imageClient, model, body)
	if err != nil {
		return nil, err
	}

	for _, part := range candidateParts(resp) {
		if part.InlineData == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, &ProviderError{Model: model, Message: "undecodable image payload: " + err.Error()}
		}
		if len(data) == 0 {
			continue
		}
		return data, nil
	}
	return nil, &ProviderError{Model: model, Message: "response carried no image data"}
}

func (g *HTTPClient) generateContent(ctx context.Context, client *http.Client, model string, body map[string]interface{}) (*apiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, model, url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{Model: model, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Model: model, Message: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Model: model, Code: resp.StatusCode, Message: truncate(string(respBody), 512)}
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &ProviderError{Model: model, Message: "failed to parse response: " + err.Error()}
	}

	g.log.Debug().
		Str("model", model).
		Dur("duration", time.Since(start)).
		Msg("generateContent")
	return &result, nil
}

func candidateParts(resp *apiResponse) []apiPart {
	if len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// API response structures

type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []apiPart `json:"parts"`
			Role  string    `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

type apiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData,omitempty"`
}
