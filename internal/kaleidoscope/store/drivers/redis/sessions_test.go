package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/domain"
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/store"
)

var epoch = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestSessions(t *testing.T) (*Sessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewSessions(client, "test")
	s.now = func() time.Time { return epoch }
	return s, mr
}

func session(hash, subject, chain string, ttl time.Duration) domain.RefreshSession {
	return domain.RefreshSession{
		ID:        "id-" + hash,
		TokenHash: hash,
		SubjectID: subject,
		ChainID:   chain,
		UserAgent: "test-agent",
		IPAddress: "192.0.2.1",
		IssuedAt:  epoch,
		ExpiresAt: epoch.Add(ttl),
	}
}

func TestSessions_CreateFind(t *testing.T) {
	t.Parallel()

	s, mr := newTestSessions(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, session("h1", "u1", "c1", time.Hour)))

	got, err := s.FindSession(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, "id-h1", got.ID)
	require.Equal(t, "h1", got.TokenHash)
	require.Equal(t, "u1", got.SubjectID)
	require.Equal(t, "c1", got.ChainID)
	require.Equal(t, "test-agent", got.UserAgent)
	require.True(t, got.ExpiresAt.Equal(epoch.Add(time.Hour)))
	require.False(t, got.Revoked)
	require.Nil(t, got.RevokedAt)

	require.Equal(t, time.Hour+store.ExpiredSessionRetention, mr.TTL("test:session:h1"))
	require.True(t, mr.Exists("test:chain:c1"))
	require.True(t, mr.Exists("test:subject:u1"))

	t.Run("duplicate", func(t *testing.T) {
		err := s.CreateSession(ctx, session("h1", "u1", "c1", time.Hour))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.FindSession(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("index ttl follows longest member", func(t *testing.T) {
		require.NoError(t, s.CreateSession(ctx, session("h2", "u1", "c1", 2*time.Hour)))
		require.NoError(t, s.CreateSession(ctx, session("h3", "u1", "c1", 30*time.Minute)))
		require.Equal(t, 2*time.Hour+store.ExpiredSessionRetention, mr.TTL("test:chain:c1"))
	})

	t.Run("kept through retention after expiry", func(t *testing.T) {
		mr.FastForward(time.Hour + time.Second)
		got, err := s.FindSession(ctx, "h1")
		require.NoError(t, err)
		require.True(t, got.IsExpired(epoch.Add(time.Hour+time.Second)))
	})

	t.Run("gone after retention", func(t *testing.T) {
		mr.FastForward(store.ExpiredSessionRetention)
		_, err := s.FindSession(ctx, "h1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSessions_MarkRevoked(t *testing.T) {
	t.Parallel()

	s, _ := newTestSessions(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, session("h1", "u1", "c1", time.Hour)))

	at := epoch.Add(time.Minute)
	ok, err := s.MarkRevoked(ctx, "h1", at)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.MarkRevoked(ctx, "h1", at)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.MarkRevoked(ctx, "missing", at)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := s.FindSession(ctx, "h1")
	require.NoError(t, err)
	require.True(t, got.Revoked)
	require.NotNil(t, got.RevokedAt)
	require.True(t, got.RevokedAt.Equal(at))
}

func TestSessions_MarkRevokedRace(t *testing.T) {
	t.Parallel()

	s, _ := newTestSessions(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, session("h1", "u1", "c1", time.Hour)))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := s.MarkRevoked(ctx, "h1", epoch); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

func TestSessions_RevokeSets(t *testing.T) {
	t.Parallel()

	s, _ := newTestSessions(t)
	ctx := context.Background()
	for _, sess := range []domain.RefreshSession{
		session("h1", "u1", "c1", time.Hour),
		session("h2", "u1", "c1", time.Hour),
		session("h3", "u1", "c2", time.Hour),
		session("h4", "u2", "c3", time.Hour),
	} {
		require.NoError(t, s.CreateSession(ctx, sess))
	}

	ok, err := s.MarkRevoked(ctx, "h1", epoch)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.RevokeChain(ctx, "c1", epoch)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = s.RevokeAllForSubject(ctx, "u1", epoch)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := s.FindSession(ctx, "h4")
	require.NoError(t, err)
	require.False(t, got.Revoked)

	n, err = s.RevokeChain(ctx, "unknown", epoch)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSessions_DeleteExpiredPrunesIndexes(t *testing.T) {
	t.Parallel()

	s, mr := newTestSessions(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, session("h1", "u1", "c1", time.Minute)))
	require.NoError(t, s.CreateSession(ctx, session("h2", "u1", "c2", time.Hour)))

	mr.FastForward(2*time.Minute + store.ExpiredSessionRetention)

	n, err := s.DeleteExpiredSessions(ctx, epoch.Add(2*time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	members, err := mr.SMembers("test:subject:u1")
	require.NoError(t, err)
	require.Equal(t, []string{"h2"}, members)
	require.False(t, mr.Exists("test:chain:c1"), "emptied set is removed")
}

func TestSessions_Ping(t *testing.T) {
	t.Parallel()

	s, mr := newTestSessions(t)
	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	require.Error(t, s.Ping(context.Background()))
}
