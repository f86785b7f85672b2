package inmemorylocker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	inmemorylocker "github.com/crowdescrow/escrowd/internal/infrastructure/locker/inmemory"
	"github.com/stretchr/testify/require"
)

func TestLocker(t *testing.T) {
	t.Run("serializes same key", func(t *testing.T) {
		locker := inmemorylocker.NewLocker()
		defer locker.Close()

		var running, maxRunning atomic.Int32
		wg := sync.WaitGroup{}
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(context.Background(), "subject")
				require.NoError(t, err)
				defer unlock()

				n := running.Add(1)
				if n > maxRunning.Load() {
					maxRunning.Store(n)
				}
				time.Sleep(time.Millisecond)
				running.Add(-1)
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), maxRunning.Load())
	})

	t.Run("independent keys", func(t *testing.T) {
		locker := inmemorylocker.NewLocker()

		unlockA, err := locker.Lock(context.Background(), "a")
		require.NoError(t, err)
		defer unlockA()

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		unlockB, err := locker.Lock(ctx, "b")
		require.NoError(t, err)
		unlockB()
	})

	t.Run("context canceled", func(t *testing.T) {
		locker := inmemorylocker.NewLocker()

		unlock, err := locker.Lock(context.Background(), "a")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(ctx, "a")
		require.ErrorIs(t, err, context.DeadlineExceeded)

		unlock()
		unlock()

		unlock, err = locker.Lock(context.Background(), "a")
		require.NoError(t, err)
		unlock()
	})
}
