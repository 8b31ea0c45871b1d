package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRefreshSessionIsExpired(t *testing.T) {
	t.Parallel()

	exp := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := RefreshSession{ExpiresAt: exp}

	require.False(t, s.IsExpired(exp.Add(-time.Second)))
	require.True(t, s.IsExpired(exp), "expiry instant itself is expired")
	require.True(t, s.IsExpired(exp.Add(time.Minute)))
}
