// Package session maps user identities onto backend conversation sessions.
//
// The backend owns session state; this store only remembers which session id
// belongs to which user so repeated queries land in the same conversation.
package session

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/codebyNJ/Justifyai/internal/agentapi"
	"github.com/codebyNJ/Justifyai/internal/domain"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

const stripes = 32

// Store tracks one backend session per user. Lookups for different users
// never contend; concurrent lookups for the same user result in a single
// create_session call against the backend.
type Store struct {
	client agentapi.Client
	log    *logging.Logger

	locks    [stripes]sync.Mutex
	mu       sync.RWMutex
	sessions map[string]string
}

// New creates an empty store backed by the given agent client.
func New(client agentapi.Client, log *logging.Logger) *Store {
	return &Store{
		client:   client,
		log:      log.Sub("session"),
		sessions: make(map[string]string),
	}
}

// Ensure returns the session id for userID, creating one on the backend if
// this user has none yet.
func (s *Store) Ensure(ctx context.Context, userID string) (string, error) {
	if id, ok := s.lookup(userID); ok {
		return id, nil
	}

	lock := &s.locks[stripeFor(userID)]
	lock.Lock()
	defer lock.Unlock()

	// Another request for the same user may have won the race.
	if id, ok := s.lookup(userID); ok {
		return id, nil
	}

	id, err := s.client.CreateSession(ctx, userID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[userID] = id
	s.mu.Unlock()

	s.log.Debug().Str("userId", userID).Str("sessionId", id).Msg("session bound")
	return id, nil
}

// Reset forgets the session for userID. The next Ensure starts a fresh
// conversation. Returns the dropped session id, if any.
func (s *Store) Reset(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
	}
	return id, ok
}

// Snapshot returns the current user to session bindings.
func (s *Store) Snapshot() []domain.SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SessionInfo, 0, len(s.sessions))
	for user, id := range s.sessions {
		out = append(out, domain.SessionInfo{UserID: user, SessionID: id})
	}
	return out
}

// Len reports how many users currently hold a session.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) lookup(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.sessions[userID]
	return id, ok
}

func stripeFor(userID string) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return int(h.Sum32() % stripes)
}
