package client

import (
	"context"
	"sync"

	"github.com/LeJamon/goVaultd/internal/core/vault"
)

// vaultLocks allows one in-flight write per vault id. Each held id maps to
// a channel that is closed on release.
type vaultLocks struct {
	mu   sync.Mutex
	held map[vault.ID]chan struct{}
}

func newVaultLocks() *vaultLocks {
	return &vaultLocks{held: make(map[vault.ID]chan struct{})}
}

// acquire blocks until id is free or ctx ends. The returned func releases id.
func (l *vaultLocks) acquire(ctx context.Context, id vault.ID) (func(), error) {
	for {
		l.mu.Lock()
		ch, busy := l.held[id]
		if !busy {
			ch = make(chan struct{})
			l.held[id] = ch
			l.mu.Unlock()
			return func() { l.release(id, ch) }, nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *vaultLocks) release(id vault.ID, ch chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[id] == ch {
		delete(l.held, id)
		close(ch)
	}
}
