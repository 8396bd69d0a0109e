package gateway

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codebyNJ/Justifyai/internal/agentapi"
	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/domain"
	"github.com/codebyNJ/Justifyai/internal/logging"
	"github.com/codebyNJ/Justifyai/internal/session"
	"github.com/codebyNJ/Justifyai/internal/version"
)

// AgentServer fronts the hosted conversational agent: it owns the user to
// session mapping and forwards queries to the backend.
type AgentServer struct {
	*Server
	agent     agentapi.Client
	sessions  *session.Store
	log       *logging.Logger
	upgrader  websocket.Upgrader
	startedAt time.Time
}

// NewAgentServer wires the agent gateway routes.
func NewAgentServer(cfg config.Config, agent agentapi.Client, sessions *session.Store, log *logging.Logger) *AgentServer {
	s := &AgentServer{
		agent:     agent,
		sessions:  sessions,
		log:       log.Sub("agent-gateway"),
		startedAt: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.Server.AllowedOrigins),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /query-stream", s.handleQueryStream)
	mux.HandleFunc("POST /reset-session", s.handleResetSession)
	mux.HandleFunc("GET /sessions", s.handleSessions)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	s.Server = newServer("agent gateway", cfg.Server, cfg.Server.AgentPort, mux, s.log)
	return s
}

// checkWebSocketOrigin validates WebSocket Origin headers. Requests without
// an Origin header (non-browser clients) are always allowed.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return isOriginAllowed(origin, allowed)
	}
}

func (s *AgentServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		handleNotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "justifyai agent gateway",
		"status":  "running",
		"version": version.Version,
	})
}

func (s *AgentServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"sessions":      s.sessions.Len(),
		"uptimeSeconds": int(time.Since(s.startedAt).Seconds()),
	})
}

type queryRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

func (q queryRequest) validate(w http.ResponseWriter) bool {
	if strings.TrimSpace(q.UserID) == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return false
	}
	if strings.TrimSpace(q.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return false
	}
	return true
}

// handleQuery forwards one query to the agent and returns the joined reply.
func (s *AgentServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.validate(w) {
		return
	}

	sessionID, err := s.sessions.Ensure(r.Context(), req.UserID)
	if err != nil {
		writeAgentError(w, err)
		return
	}

	var parts []string
	err = s.agent.StreamQuery(r.Context(), req.UserID, sessionID, req.Message, func(text string) error {
		parts = append(parts, text)
		return nil
	})
	if err != nil {
		writeAgentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.APIOutput{
		Response:  strings.Join(parts, " "),
		SessionID: sessionID,
	})
}

// handleQueryStream forwards one query and relays reply fragments as
// server-sent events, ending with a complete event carrying the full reply.
func (s *AgentServer) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.validate(w) {
		return
	}

	sessionID, err := s.sessions.Ensure(r.Context(), req.UserID)
	if err != nil {
		writeAgentError(w, err)
		return
	}

	stream, ok := newSSEStream(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var parts []string
	err = s.agent.StreamQuery(r.Context(), req.UserID, sessionID, req.Message, func(text string) error {
		parts = append(parts, text)
		return stream.Send("fragment", domain.QueryFragment{Text: text, SessionID: sessionID})
	})
	if err != nil {
		stream.Send("error", ErrorResponse{Error: err.Error()})
		return
	}

	stream.Send("complete", domain.APIOutput{
		Response:  strings.Join(parts, " "),
		SessionID: sessionID,
	})
}

type resetSessionRequest struct {
	UserID string `json:"userId"`
}

func (s *AgentServer) handleResetSession(w http.ResponseWriter, r *http.Request) {
	var req resetSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	dropped, had := s.sessions.Reset(req.UserID)
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":    req.UserID,
		"reset":     had,
		"sessionId": dropped,
	})
}

func (s *AgentServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	snap := s.sessions.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": snap,
		"count":    len(snap),
	})
}

// wsQueryResult frames one outbound websocket message.
type wsQueryResult struct {
	Type      string `json:"type"` // "fragment" | "complete" | "error"
	Text      string `json:"text,omitempty"`
	Response  string `json:"response,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleWebSocket runs a persistent query loop: the client sends query
// requests and receives reply fragments followed by a complete message.
func (s *AgentServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(1 << 20)

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

	for {
		var req queryRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Msg("websocket closed")
			} else {
				s.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Message) == "" {
			conn.WriteJSON(wsQueryResult{Type: "error", Error: "userId and query are required"})
			continue
		}

		if err := s.answerOverSocket(r, conn, req); err != nil {
			return
		}
	}
}

// answerOverSocket streams one reply. A non-nil return means the socket
// itself failed and the loop should end; backend failures are reported to
// the client and the loop continues.
func (s *AgentServer) answerOverSocket(r *http.Request, conn *websocket.Conn, req queryRequest) error {
	sessionID, err := s.sessions.Ensure(r.Context(), req.UserID)
	if err != nil {
		return conn.WriteJSON(wsQueryResult{Type: "error", Error: err.Error()})
	}

	var parts []string
	err = s.agent.StreamQuery(r.Context(), req.UserID, sessionID, req.Message, func(text string) error {
		parts = append(parts, text)
		return conn.WriteJSON(wsQueryResult{Type: "fragment", Text: text, SessionID: sessionID})
	})
	if err != nil {
		var agentErr *agentapi.Error
		if !errors.As(err, &agentErr) {
			// Write failures land here; the connection is gone.
			return err
		}
		return conn.WriteJSON(wsQueryResult{Type: "error", Error: agentErr.Message, SessionID: sessionID})
	}

	return conn.WriteJSON(wsQueryResult{
		Type:      "complete",
		Response:  strings.Join(parts, " "),
		SessionID: sessionID,
	})
}
