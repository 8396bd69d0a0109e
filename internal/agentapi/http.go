package agentapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// HTTPClient talks to a deployed reasoning engine over its REST surface.
type HTTPClient struct {
	baseURL  string
	engineID string
	client   *http.Client
	log      *logging.Logger
}

// NewHTTPClient builds a client from config. Credentials resolve in order:
// service-account JSON → static bearer token.
func NewHTTPClient(ctx context.Context, cfg config.AgentConfig, log *logging.Logger) (*HTTPClient, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	var httpClient *http.Client
	switch {
	case strings.TrimSpace(cfg.Credentials) != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.Credentials), cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("parsing agent credentials: %w", err)
		}
		httpClient = oauth2.NewClient(ctx, creds.TokenSource)
	case cfg.Token != "":
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, src)
	default:
		return nil, fmt.Errorf("agent backend: no credentials configured")
	}
	httpClient.Timeout = timeout

	return &HTTPClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		engineID: cfg.EngineID,
		client:   httpClient,
		log:      log.Sub("agentapi"),
	}, nil
}

// engineRequest is the envelope the reasoning engine API expects.
type engineRequest struct {
	ClassMethod string         `json:"class_method"`
	Input       map[string]any `json:"input"`
}

// sessionResponse is the backend's answer to a create_session call.
type sessionResponse struct {
	Output struct {
		ID string `json:"id"`
	} `json:"output"`
}

// streamEvent is one line of the backend's streamed reply.
type streamEvent struct {
	Content struct {
		Parts []struct {
			Text *string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
}

func (c *HTTPClient) CreateSession(ctx context.Context, userID string) (string, error) {
	body := engineRequest{
		ClassMethod: "create_session",
		Input:       map[string]any{"user_id": userID},
	}

	respBody, status, err := c.post(ctx, ":query", body)
	if err != nil {
		return "", &Error{Op: "create_session", Code: CodeUnavailable, Message: err.Error()}
	}
	if status != http.StatusOK {
		return "", &Error{
			Op:      "create_session",
			Code:    CodeUnavailable,
			Status:  status,
			Message: truncateBody(respBody),
		}
	}

	var sr sessionResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return "", &Error{Op: "create_session", Code: CodeUnavailable, Message: "malformed session response: " + err.Error()}
	}
	if sr.Output.ID == "" {
		return "", &Error{Op: "create_session", Code: CodeUnavailable, Message: "backend returned no session id"}
	}

	c.log.Info().Str("userId", userID).Str("sessionId", sr.Output.ID).Msg("session created")
	return sr.Output.ID, nil
}

func (c *HTTPClient) StreamQuery(ctx context.Context, userID, sessionID, message string, onFragment FragmentFunc) error {
	body := engineRequest{
		ClassMethod: "stream_query",
		Input: map[string]any{
			"user_id":    userID,
			"session_id": sessionID,
			"message":    message,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Op: "stream_query", Code: CodeQueryFailed, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.engineID+":streamQuery", bytes.NewReader(payload))
	if err != nil {
		return &Error{Op: "stream_query", Code: CodeQueryFailed, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Op: "stream_query", Code: CodeQueryFailed, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{
			Op:      "stream_query",
			Code:    CodeQueryFailed,
			Status:  resp.StatusCode,
			Message: truncateBody(b),
		}
	}

	// The backend streams one JSON event per line; each event carries
	// content parts whose text fields are the reply fragments.
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var evt streamEvent
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			return &Error{Op: "stream_query", Code: CodeQueryFailed, Message: "malformed stream event: " + err.Error()}
		}
		for _, part := range evt.Content.Parts {
			if part.Text == nil {
				return &Error{Op: "stream_query", Code: CodeQueryFailed, Message: "stream event part missing text field"}
			}
			if err := onFragment(*part.Text); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return &Error{Op: "stream_query", Code: CodeQueryFailed, Message: err.Error()}
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, verb string, body engineRequest) ([]byte, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.engineID+verb, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}

func truncateBody(b []byte) string {
	const max = 512
	s := string(b)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
