package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_MutualExclusionPerOrder(t *testing.T) {
	l := NewMemoryLocker()
	const workers = 16

	var inSection, maxInSection int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(context.Background(), 42)
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inSection++
			if inSection > maxInSection {
				maxInSection = inSection
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inSection--
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, maxInSection)
	require.Empty(t, l.locks)
}

func TestMemoryLocker_DistinctOrdersDoNotContend(t *testing.T) {
	l := NewMemoryLocker()

	r1, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r2, err := l.Lock(ctx, 2)
	require.NoError(t, err)
	r2()
}

func TestMemoryLocker_ContextCancelledWhileWaiting(t *testing.T) {
	l := NewMemoryLocker()

	release, err := l.Lock(context.Background(), 7)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, 7)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	require.Empty(t, l.locks)
}

func TestMemoryLocker_ReleaseIsIdempotent(t *testing.T) {
	l := NewMemoryLocker()

	release, err := l.Lock(context.Background(), 3)
	require.NoError(t, err)
	release()
	release()

	r2, err := l.Lock(context.Background(), 3)
	require.NoError(t, err)
	r2()
}
