package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupService_Sweep(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	user, err := adapter.CreateUser(ctx, NewUser{Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = adapter.CreateSession(ctx, Session{SessionToken: "old", UserID: user.ID, Expires: now.Add(-time.Minute)})
	require.NoError(t, err)
	_, err = adapter.CreateSession(ctx, Session{SessionToken: "fresh", UserID: user.ID, Expires: now.Add(time.Minute)})
	require.NoError(t, err)

	svc := NewCleanupService(adapter, time.Hour)
	svc.now = func() time.Time { return now }

	assert.Equal(t, int64(1), svc.Sweep(ctx))

	_, _, err = adapter.GetSessionAndUser(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = adapter.GetSessionAndUser(ctx, "fresh")
	assert.NoError(t, err)
}

func TestCleanupService_StartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := NewCleanupService(NewMemoryAdapter(), time.Millisecond)

	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup service did not stop")
	}
}
