package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions() *SessionStore {
	return NewSessionStore(NewTokenManager("test-secret", "userdesk", 0))
}

func TestSessionStore_IssueResolve(t *testing.T) {
	s := newTestSessions()

	tok, err := s.Issue(7)
	require.NoError(t, err)

	uid, ok := s.Resolve(tok)
	require.True(t, ok)
	assert.Equal(t, int64(7), uid)
	assert.Equal(t, 1, s.Len())
}

func TestSessionStore_DistinctTokens(t *testing.T) {
	s := newTestSessions()
	a, err := s.Issue(1)
	require.NoError(t, err)
	b, err := s.Issue(2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	uid, ok := s.Resolve(a)
	require.True(t, ok)
	assert.Equal(t, int64(1), uid)
	uid, ok = s.Resolve(b)
	require.True(t, ok)
	assert.Equal(t, int64(2), uid)
}

func TestSessionStore_ResolveAbsent(t *testing.T) {
	s := newTestSessions()

	_, ok := s.Resolve("")
	assert.False(t, ok)
	_, ok = s.Resolve("garbage")
	assert.False(t, ok)

	// Validly signed, but never issued by this store.
	orphan, err := NewTokenManager("test-secret", "userdesk", 0).Generate("unknown", 1)
	require.NoError(t, err)
	_, ok = s.Resolve(orphan)
	assert.False(t, ok)
}

func TestSessionStore_ForeignStoreToken(t *testing.T) {
	a := newTestSessions()
	b := NewSessionStore(NewTokenManager("other-secret", "userdesk", 0))

	tok, err := b.Issue(1)
	require.NoError(t, err)
	_, ok := a.Resolve(tok)
	assert.False(t, ok)
}

func TestSessionStore_RevokeAndClose(t *testing.T) {
	s := newTestSessions()
	a, err := s.Issue(1)
	require.NoError(t, err)
	b, err := s.Issue(2)
	require.NoError(t, err)

	s.Revoke(a)
	_, ok := s.Resolve(a)
	assert.False(t, ok)
	_, ok = s.Resolve(b)
	assert.True(t, ok)

	s.Close()
	_, ok = s.Resolve(b)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestSessionStore_ConcurrentUse(t *testing.T) {
	s := newTestSessions()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			tok, err := s.Issue(uid)
			if !assert.NoError(t, err) {
				return
			}
			got, ok := s.Resolve(tok)
			assert.True(t, ok)
			assert.Equal(t, uid, got)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestSessionStore_ExpiredSessionIsDropped(t *testing.T) {
	s := NewSessionStore(NewTokenManager("test-secret", "userdesk", time.Hour))
	start := time.Now()
	s.now = func() time.Time { return start }

	tok, err := s.Issue(3)
	require.NoError(t, err)
	_, ok := s.Resolve(tok)
	require.True(t, ok)

	s.now = func() time.Time { return start.Add(time.Hour) }
	_, ok = s.Resolve(tok)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestSessionStore_Sweep(t *testing.T) {
	s := NewSessionStore(NewTokenManager("test-secret", "userdesk", time.Hour))
	start := time.Now()
	s.now = func() time.Time { return start }
	_, err := s.Issue(1)
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(30 * time.Minute) }
	fresh, err := s.Issue(2)
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(61 * time.Minute) }
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	_, ok := s.Resolve(fresh)
	assert.True(t, ok)
}

func TestSessionStore_SweepWithoutTTL(t *testing.T) {
	s := newTestSessions()
	_, err := s.Issue(1)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }

	assert.Zero(t, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestSessionStore_RunSweeperStopsOnCancel(t *testing.T) {
	s := NewSessionStore(NewTokenManager("test-secret", "userdesk", time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
