package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebyNJ/Justifyai/internal/agentapi"
	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/domain"
	"github.com/codebyNJ/Justifyai/internal/logging"
	"github.com/codebyNJ/Justifyai/internal/session"
)

func newAgentTestServer(t *testing.T, client agentapi.Client) *httptest.Server {
	t.Helper()
	log := logging.Discard()
	sessions := session.New(client, log)
	s := NewAgentServer(config.Defaults(), client, sessions, log)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func echoAgent() *agentapi.MockClient {
	return &agentapi.MockClient{
		CreateSessionFunc: func(ctx context.Context, userID string) (string, error) {
			return "sess-" + userID, nil
		},
		StreamQueryFunc: func(ctx context.Context, userID, sessionID, message string, onFragment agentapi.FragmentFunc) error {
			for _, frag := range []string{"reply", "to:", message} {
				if err := onFragment(frag); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAgentQuery(t *testing.T) {
	srv := newAgentTestServer(t, echoAgent())

	resp := postJSON(t, srv.URL+"/query", map[string]string{"userId": "alice", "message": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out domain.APIOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "reply to: hello", out.Response)
	assert.Equal(t, "sess-alice", out.SessionID)
}

func TestAgentQuerySessionReuse(t *testing.T) {
	var created int
	client := echoAgent()
	client.CreateSessionFunc = func(ctx context.Context, userID string) (string, error) {
		created++
		return fmt.Sprintf("sess-%d", created), nil
	}
	srv := newAgentTestServer(t, client)

	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/query", map[string]string{"userId": "alice", "message": "q"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 1, created)
}

func TestAgentQueryValidation(t *testing.T) {
	srv := newAgentTestServer(t, echoAgent())

	resp := postJSON(t, srv.URL+"/query", map[string]string{"userId": "", "message": "q"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/query", map[string]string{"userId": "alice", "message": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAgentQueryBackendUnavailable(t *testing.T) {
	client := echoAgent()
	client.CreateSessionFunc = func(ctx context.Context, userID string) (string, error) {
		return "", &agentapi.Error{Op: "create_session", Code: agentapi.CodeUnavailable, Message: "backend down"}
	}
	srv := newAgentTestServer(t, client)

	resp := postJSON(t, srv.URL+"/query", map[string]string{"userId": "alice", "message": "q"})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, agentapi.CodeUnavailable, errResp.Code)
}

func TestAgentQueryStream(t *testing.T) {
	srv := newAgentTestServer(t, echoAgent())

	resp := postJSON(t, srv.URL+"/query-stream", map[string]string{"userId": "alice", "message": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := parseSSE(t, resp)
	require.NotEmpty(t, events)
	assert.Equal(t, "fragment", events[0].name)

	last := events[len(events)-1]
	require.Equal(t, "complete", last.name)

	var out domain.APIOutput
	require.NoError(t, json.Unmarshal([]byte(last.data), &out))
	assert.Equal(t, "reply to: hello", out.Response)
}

func TestAgentResetSession(t *testing.T) {
	srv := newAgentTestServer(t, echoAgent())

	postJSON(t, srv.URL+"/query", map[string]string{"userId": "alice", "message": "q"})

	resp := postJSON(t, srv.URL+"/reset-session", map[string]string{"userId": "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["reset"])
	assert.Equal(t, "sess-alice", body["sessionId"])

	resp = postJSON(t, srv.URL+"/reset-session", map[string]string{"userId": "alice"})
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["reset"])
}

func TestAgentSessionsList(t *testing.T) {
	srv := newAgentTestServer(t, echoAgent())

	postJSON(t, srv.URL+"/query", map[string]string{"userId": "alice", "message": "q"})
	postJSON(t, srv.URL+"/query", map[string]string{"userId": "bob", "message": "q"})

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Sessions []domain.SessionInfo `json:"sessions"`
		Count    int                  `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
}

func TestAgentHealthAndRoot(t *testing.T) {
	srv := newAgentTestServer(t, echoAgent())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "running", body["status"])

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAgentWebSocketQuery(t *testing.T) {
	srv := newAgentTestServer(t, echoAgent())

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"userId": "alice", "message": "hi"}))

	var types []string
	var last wsQueryResult
	for {
		var msg wsQueryResult
		require.NoError(t, conn.ReadJSON(&msg))
		types = append(types, msg.Type)
		last = msg
		if msg.Type != "fragment" {
			break
		}
	}

	assert.Equal(t, []string{"fragment", "fragment", "fragment", "complete"}, types)
	assert.Equal(t, "reply to: hi", last.Response)
	assert.Equal(t, "sess-alice", last.SessionID)
}

// sseEvent is one parsed server-sent event.
type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, resp *http.Response) []sseEvent {
	t.Helper()
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	var events []sseEvent
	for _, block := range strings.Split(buf.String(), "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		var evt sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				evt.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				evt.data = strings.TrimPrefix(line, "data: ")
			}
		}
		events = append(events, evt)
	}
	return events
}
