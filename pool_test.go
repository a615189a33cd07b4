package wpool_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wpool "github.com/compilepool/poold"
)

func newTestPool(t *testing.T, client *fakeWorkerClient, maxQueuedJobs int) *wpool.WPool {
	t.Helper()
	ctx := context.Background()
	var secretKey [64]byte
	pool := wpool.NewPool(ctx, secretKey, maxQueuedJobs, client, nil, nil, prometheus.NewRegistry())
	t.Cleanup(pool.Close)
	return pool
}

func awaitCondition(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

// Scenario 1: empty pool rejects.
func Test_Pool_EmptyPoolRejects(t *testing.T) {
	client := newFakeWorkerClient()
	pool := newTestPool(t, client, 10)

	resp, err := pool.SubmitJob(context.Background(), wpool.RunRequest{})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.ErrorIs(t, resp.Err, wpool.ErrBackend)

	assert.Empty(t, pool.GetAvailableVersions())
}

// Scenario 2: happy path.
func Test_Pool_HappyPath(t *testing.T) {
	client := newFakeWorkerClient()
	pool := newTestPool(t, client, 10)

	addr := wpool.WorkerAddr{Host: "worker-1"}
	client.setVersions(addr.Host, []wpool.Version{"9.6.3", "9.8.1"})
	require.NoError(t, pool.AddWorker(addr))

	awaitCondition(t, time.Second, func() bool {
		return len(pool.GetAvailableVersions()) == 2
	})
	assert.Equal(t, []wpool.Version{"9.6.3", "9.8.1"}, pool.GetAvailableVersions())

	awaitCondition(t, time.Second, func() bool {
		status, err := pool.GetPoolStatus(context.Background())
		return err == nil && len(status.Workers) == 1 && status.Workers[0].Idle
	})

	resp, err := pool.SubmitJob(context.Background(), wpool.RunRequest{Version: "9.6.3"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Nil(t, resp.Err)
	assert.Equal(t, []byte("ok"), resp.Stdout)
}

// Scenario 3: backoff on failure.
func Test_Pool_BackoffOnFailure(t *testing.T) {
	client := newFakeWorkerClient()
	pool := newTestPool(t, client, 10)

	addr := wpool.WorkerAddr{Host: "worker-1"}
	client.setVersions(addr.Host, []wpool.Version{"9.6.3"})
	client.failVersionsNTimes(addr.Host, 3)
	require.NoError(t, pool.AddWorker(addr))

	awaitCondition(t, 10*time.Second, func() bool {
		status, err := pool.GetPoolStatus(context.Background())
		return err == nil && len(status.Workers) == 1 && status.Workers[0].Idle
	})
}

// Scenario 4: backlog drain.
func Test_Pool_BacklogDrain(t *testing.T) {
	client := newFakeWorkerClient()
	pool := newTestPool(t, client, 10)

	addr := wpool.WorkerAddr{Host: "worker-1"}
	client.setVersions(addr.Host, []wpool.Version{"9.6.3"})
	require.NoError(t, pool.AddWorker(addr))

	awaitCondition(t, time.Second, func() bool {
		return len(pool.GetAvailableVersions()) == 1
	})

	var wg sync.WaitGroup
	results := make([]*wpool.RunResponse, 10)
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = pool.SubmitJob(context.Background(), wpool.RunRequest{})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Nil(t, results[i].Err)
	}
}

// Scenario 5: capacity. A worker that never becomes healthy keeps every
// admitted job parked in the backlog for the test's duration, so
// numQueuedJobs only ever goes up during this test — making the 2-of-3
// admission split deterministic regardless of goroutine scheduling order,
// unlike racing against a no-worker pool where admitted jobs resolve (and
// decrement the counter) almost immediately.
func Test_Pool_Capacity(t *testing.T) {
	client := newFakeWorkerClient()
	pool := newTestPool(t, client, 2)

	addr := wpool.WorkerAddr{Host: "worker-1"}
	client.failVersionsNTimes(addr.Host, 1_000_000)
	require.NoError(t, pool.AddWorker(addr))

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			_, errs[i] = pool.SubmitJob(ctx, wpool.RunRequest{})
		}(i)
	}
	wg.Wait()

	capacityRejections := 0
	timedOut := 0
	for _, err := range errs {
		switch err {
		case wpool.ErrCapacity:
			capacityRejections++
		case context.DeadlineExceeded:
			timedOut++
		}
	}
	assert.Equal(t, 1, capacityRejections)
	assert.Equal(t, 2, timedOut)
}

// Scenario 6: recovery routes backlog.
func Test_Pool_RecoveryRoutesBacklog(t *testing.T) {
	client := newFakeWorkerClient()
	pool := newTestPool(t, client, 10)

	addr := wpool.WorkerAddr{Host: "worker-1"}
	client.setVersions(addr.Host, []wpool.Version{"9.6.3"})
	client.failVersionsNTimes(addr.Host, 1)
	require.NoError(t, pool.AddWorker(addr))

	var wg sync.WaitGroup
	results := make([]*wpool.RunResponse, 3)
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = pool.SubmitJob(context.Background(), wpool.RunRequest{})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Nil(t, results[i].Err)
	}
}
