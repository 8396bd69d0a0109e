package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebyNJ/Justifyai/internal/agentapi"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

func newStore(client agentapi.Client) *Store {
	return New(client, logging.Discard())
}

func TestEnsureReusesSession(t *testing.T) {
	var calls int
	mock := &agentapi.MockClient{
		CreateSessionFunc: func(ctx context.Context, userID string) (string, error) {
			calls++
			return fmt.Sprintf("sess-%s-%d", userID, calls), nil
		},
	}
	s := newStore(mock)

	first, err := s.Ensure(context.Background(), "alice")
	require.NoError(t, err)
	second, err := s.Ensure(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, s.Len())
}

func TestEnsureSeparateUsersGetSeparateSessions(t *testing.T) {
	mock := &agentapi.MockClient{
		CreateSessionFunc: func(ctx context.Context, userID string) (string, error) {
			return "sess-" + userID, nil
		},
	}
	s := newStore(mock)

	a, err := s.Ensure(context.Background(), "alice")
	require.NoError(t, err)
	b, err := s.Ensure(context.Background(), "bob")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Len())
}

func TestEnsureDoesNotCacheFailures(t *testing.T) {
	var calls int
	mock := &agentapi.MockClient{
		CreateSessionFunc: func(ctx context.Context, userID string) (string, error) {
			calls++
			if calls == 1 {
				return "", &agentapi.Error{Op: "create_session", Code: agentapi.CodeUnavailable, Message: "down"}
			}
			return "sess-ok", nil
		},
	}
	s := newStore(mock)

	_, err := s.Ensure(context.Background(), "alice")
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())

	id, err := s.Ensure(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "sess-ok", id)
}

func TestReset(t *testing.T) {
	mock := &agentapi.MockClient{
		CreateSessionFunc: func(ctx context.Context, userID string) (string, error) {
			return "sess-" + userID, nil
		},
	}
	s := newStore(mock)

	_, err := s.Ensure(context.Background(), "alice")
	require.NoError(t, err)

	dropped, ok := s.Reset("alice")
	assert.True(t, ok)
	assert.Equal(t, "sess-alice", dropped)
	assert.Equal(t, 0, s.Len())

	_, ok = s.Reset("alice")
	assert.False(t, ok)
}

func TestConcurrentEnsureSameUserCreatesOnce(t *testing.T) {
	var calls atomic.Int32
	mock := &agentapi.MockClient{
		CreateSessionFunc: func(ctx context.Context, userID string) (string, error) {
			calls.Add(1)
			return "sess-one", nil
		},
	}
	s := newStore(mock)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Ensure(context.Background(), "alice")
			assert.NoError(t, err)
			assert.Equal(t, "sess-one", id)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestSnapshot(t *testing.T) {
	mock := &agentapi.MockClient{
		CreateSessionFunc: func(ctx context.Context, userID string) (string, error) {
			return "sess-" + userID, nil
		},
	}
	s := newStore(mock)

	for _, user := range []string{"alice", "bob", "carol"} {
		_, err := s.Ensure(context.Background(), user)
		require.NoError(t, err)
	}

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	seen := map[string]string{}
	for _, info := range snap {
		seen[info.UserID] = info.SessionID
	}
	assert.Equal(t, "sess-bob", seen["bob"])
}
