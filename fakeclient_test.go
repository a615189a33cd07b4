package wpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	wpool "github.com/compilepool/poold"
)

// fakeWorkerClient is a controllable in-process WorkerClient, modeled after
// the teacher's goroutine_*-prefixed in-process fakes (worker_test.go):
// scripted behavior per host instead of a real network round trip, so event
// loop scenarios can be driven deterministically without a live server.
type fakeWorkerClient struct {
	mu sync.Mutex

	versionsFailuresRemaining map[string]int
	versions                  map[string][]wpool.Version
	runErr                    map[string]error

	getVersionsCalls int32
	runJobCalls      int32
}

func newFakeWorkerClient() *fakeWorkerClient {
	return &fakeWorkerClient{
		versionsFailuresRemaining: make(map[string]int),
		versions:                  make(map[string][]wpool.Version),
		runErr:                    make(map[string]error),
	}
}

func (f *fakeWorkerClient) setVersions(host string, versions []wpool.Version) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[host] = versions
}

func (f *fakeWorkerClient) failVersionsNTimes(host string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versionsFailuresRemaining[host] = n
}

func (f *fakeWorkerClient) GetVersions(ctx context.Context, addr wpool.WorkerAddr) ([]wpool.Version, error) {
	atomic.AddInt32(&f.getVersionsCalls, 1)

	f.mu.Lock()
	defer f.mu.Unlock()

	if remaining := f.versionsFailuresRemaining[addr.Host]; remaining > 0 {
		f.versionsFailuresRemaining[addr.Host] = remaining - 1
		return nil, errors.New("fake: getVersions failed")
	}

	return f.versions[addr.Host], nil
}

func (f *fakeWorkerClient) RunJob(ctx context.Context, secretKey [64]byte, addr wpool.WorkerAddr, req wpool.RunRequest) (*wpool.RunResponse, error) {
	atomic.AddInt32(&f.runJobCalls, 1)

	f.mu.Lock()
	err := f.runErr[addr.Host]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return &wpool.RunResponse{Stdout: []byte("ok"), ExitCode: 0}, nil
}
