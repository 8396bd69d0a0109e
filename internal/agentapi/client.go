// Package agentapi is the boundary to the hosted conversational agent
// backend. The backend owns per-user session state; this package only
// creates sessions and forwards queries, surfacing the backend's streamed
// text fragments in arrival order.
package agentapi

import (
	"context"
	"fmt"
)

// Error codes.
const (
	CodeUnavailable = "unavailable"  // backend unreachable or no session issued
	CodeQueryFailed = "query_failed" // transport error or malformed reply
)

// Error is returned for all agent backend failures.
type Error struct {
	Op      string // "create_session" or "stream_query"
	Code    string
	Status  int // upstream HTTP status, 0 if not applicable
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("agent %s: %s (%d): %s", e.Op, e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("agent %s: %s: %s", e.Op, e.Code, e.Message)
}

// StatusCode implements the retry classifier's StatusCoder.
func (e *Error) StatusCode() int { return e.Status }

// FragmentFunc receives one text fragment. Returning an error stops the
// stream and propagates out of StreamQuery.
type FragmentFunc func(text string) error

// Client is the interface to the agent backend.
type Client interface {
	// CreateSession asks the backend for a fresh session for the user.
	// A reachable backend that returns no identifier is an error
	// (CodeUnavailable); there is no local fallback session.
	CreateSession(ctx context.Context, userID string) (string, error)

	// StreamQuery sends a message on an existing session and delivers the
	// backend's text fragments, in arrival order, to onFragment.
	StreamQuery(ctx context.Context, userID, sessionID, message string, onFragment FragmentFunc) error
}
