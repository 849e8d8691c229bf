package lock

import (
	"context"
	"sync"
)

// MemoryLocker is a per-key mutex for single-instance deployments.
// Entries are reference counted and removed once the last holder releases,
// so the map does not grow with the number of orders ever seen.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]*memLock
}

type memLock struct {
	sem  chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[int64]*memLock)}
}

func (l *MemoryLocker) Lock(ctx context.Context, orderID int64) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[orderID]
	if !ok {
		entry = &memLock{sem: make(chan struct{}, 1)}
		l.locks[orderID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(orderID, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			<-entry.sem
			l.unref(orderID, entry)
		})
	}
	return release, nil
}

func (l *MemoryLocker) unref(orderID int64, entry *memLock) {
	l.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, orderID)
	}
	l.mu.Unlock()
}
