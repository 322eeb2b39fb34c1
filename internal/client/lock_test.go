package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goVaultd/internal/core/vault"
)

func TestVaultLocksSerializeSameID(t *testing.T) {
	l := newVaultLocks()
	release, err := l.acquire(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, held(l, 1))

	acquired := make(chan struct{})
	go func() {
		r, err := l.acquire(context.Background(), 1)
		assert.NoError(t, err)
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire did not wait")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never proceeded")
	}
}

func TestVaultLocksIndependentIDs(t *testing.T) {
	l := newVaultLocks()
	r1, err := l.acquire(context.Background(), 1)
	require.NoError(t, err)
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r2, err := l.acquire(ctx, 2)
	require.NoError(t, err)
	r2()
	assert.False(t, held(l, 2))
}

func TestVaultLocksContextCancel(t *testing.T) {
	l := newVaultLocks()
	release, err := l.acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.acquire(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestVaultLocksDoubleRelease(t *testing.T) {
	l := newVaultLocks()
	release, err := l.acquire(context.Background(), 1)
	require.NoError(t, err)
	release()
	release()
	assert.False(t, held(l, 1))
}

func held(l *vaultLocks, id vault.ID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[id]
	return ok
}
