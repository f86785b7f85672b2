package redislocker_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	redislocker "github.com/crowdescrow/escrowd/internal/infrastructure/locker/redis"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestLocker(t *testing.T) {
	url := os.Getenv("ESCROWD_TEST_REDIS_URL")
	if len(url) <= 0 {
		t.Skip("ESCROWD_TEST_REDIS_URL not set")
	}

	locker, err := redislocker.NewLocker(url, 5*time.Second)
	require.NoError(t, err)
	defer locker.Close()

	key := uuid.New().String()

	t.Run("serializes same key", func(t *testing.T) {
		counter := 0
		wg := sync.WaitGroup{}
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(context.Background(), key)
				require.NoError(t, err)
				defer unlock()

				v := counter
				time.Sleep(time.Millisecond)
				counter = v + 1
			}()
		}
		wg.Wait()
		require.Equal(t, 10, counter)
	})

	t.Run("context canceled", func(t *testing.T) {
		unlock, err := locker.Lock(context.Background(), key)
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(ctx, key)
		require.Error(t, err)
	})
}

func TestInvalidLocker(t *testing.T) {
	_, err := redislocker.NewLocker("", 0)
	require.Error(t, err)

	_, err = redislocker.NewLocker("not a url", 0)
	require.Error(t, err)
}
