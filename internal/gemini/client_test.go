package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(config.GeminiConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, logging.Discard())
}

func TestGenerateText(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		contents := body["contents"].([]any)
		require.Len(t, contents, 1)

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"world"}]}}]}`)
	}))

	text, err := c.GenerateText(context.Background(), "gemini-1.5-flash", "say hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
}

func TestGenerateTextEmptyResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))

	_, err := c.GenerateText(context.Background(), "gemini-1.5-flash", "say hello")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "no text")
}

func TestGenerateTextAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))

	_, err := c.GenerateText(context.Background(), "gemini-1.5-flash", "say hello")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode())
	assert.Equal(t, "gemini-1.5-flash", perr.Model)
}

func TestGenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		genCfg := body["generationConfig"].(map[string]any)
		assert.ElementsMatch(t, []any{"TEXT", "IMAGE"}, genCfg["responseModalities"])

		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":"here you go"},{"inlineData":{"mimeType":"image/png","data":%q}}]}}]}`,
			base64.StdEncoding.EncodeToString(png))
	}))

	data, err := c.GenerateImage(context.Background(), "gemini-2.5-flash-image-preview", "a cat")
	require.NoError(t, err)
	assert.Equal(t, png, data)
}

func TestGenerateImageNoImagePart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"sorry, cannot draw that"}]}}]}`)
	}))

	_, err := c.GenerateImage(context.Background(), "gemini-2.5-flash-image-preview", "a cat")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "no image data")
}

func TestGenerateImageBadBase64(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"%%%not-base64%%%"}}]}}]}`)
	}))

	_, err := c.GenerateImage(context.Background(), "gemini-2.5-flash-image-preview", "a cat")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "undecodable")
}
