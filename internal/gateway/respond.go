package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/codebyNJ/Justifyai/internal/agentapi"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

// writeAgentError maps an agent backend failure onto an HTTP response.
func writeAgentError(w http.ResponseWriter, err error) {
	var agentErr *agentapi.Error
	if errors.As(err, &agentErr) {
		status := http.StatusBadGateway
		if agentErr.Code == agentapi.CodeUnavailable {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, ErrorResponse{Error: agentErr.Message, Code: agentErr.Code})
		return
	}
	writeError(w, http.StatusInternalServerError, "%v", err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return false
	}
	return true
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}
