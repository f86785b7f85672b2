package scheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	scheduler "github.com/crowdescrow/escrowd/internal/infrastructure/scheduler/gocron"
	"github.com/stretchr/testify/require"
)

func TestScheduler(t *testing.T) {
	svc := scheduler.NewScheduler()
	svc.Start()
	defer svc.Stop()

	t.Run("task", func(t *testing.T) {
		count := &atomic.Int32{}
		require.NoError(t, svc.ScheduleTask(1, true, func() { count.Add(1) }))
		require.Eventually(t, func() bool { return count.Load() >= 2 }, 5*time.Second, 100*time.Millisecond)
	})

	t.Run("task once", func(t *testing.T) {
		count := &atomic.Int32{}
		at := time.Now().Unix() + 1
		require.NoError(t, svc.ScheduleTaskOnce(at, func() { count.Add(1) }))
		require.Eventually(t, func() bool { return count.Load() == 1 }, 5*time.Second, 100*time.Millisecond)

		time.Sleep(2 * time.Second)
		require.Equal(t, int32(1), count.Load())
	})

	t.Run("invalid", func(t *testing.T) {
		err := svc.ScheduleTaskOnce(time.Now().Unix()-10, func() {})
		require.Error(t, err)

		err = svc.ScheduleTask(0, false, func() {})
		require.Error(t, err)
	})
}
