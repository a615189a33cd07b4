package wpool

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WPool is the worker pool of §1-§5: a single event loop fed by a shared
// priority queue, exposed to callers through a small synchronous API that
// translates each call into an enqueued Event and, where a reply is needed,
// blocks on a channel the loop closes over.
type WPool struct {
	state    *sharedState
	client   WorkerClient
	cache    ResultCache
	audit    EventAuditPublisher
	metrics  *poolMetrics
	secret   [64]byte
	maxQueue int

	loopDone chan struct{}
}

// NewPool constructs a WPool with no workers registered. secretKey signs
// every outbound RunJob request; maxQueuedJobs bounds §4.2's admission
// control. metricsRegistry receives this pool's Prometheus series; pass
// nil to register against prometheus.DefaultRegisterer, or a fresh
// prometheus.NewRegistry() (tests construct many pools per process and a
// shared default registry would panic on the second registration). The
// event loop starts immediately and runs until Close.
func NewPool(ctx context.Context, secretKey [64]byte, maxQueuedJobs int, client WorkerClient, cache ResultCache, audit EventAuditPublisher, metricsRegistry prometheus.Registerer) *WPool {
	if cache == nil {
		cache = noopResultCache{}
	}
	if audit == nil {
		audit = noopAuditPublisher{}
	}

	p := &WPool{
		state:    newSharedState(),
		client:   client,
		cache:    cache,
		audit:    audit,
		metrics:  newPoolMetrics(metricsRegistry),
		secret:   secretKey,
		maxQueue: maxQueuedJobs,
		loopDone: make(chan struct{}),
	}

	go p.runLoop(ctx)
	return p
}

// AddWorker registers a new worker at addr. §4.3: hosts are validated before
// the event is enqueued, since a malformed host can never become reachable
// and rejecting it synchronously is cheaper than letting the loop discover
// it on the first health check.
func (p *WPool) AddWorker(addr WorkerAddr) error {
	if !isValidHost(addr.Host) {
		return ErrInvalidHost
	}
	p.state.enqueue(time.Now(), eAddWorker{addr: addr})
	return nil
}

// SubmitJob admits req, blocks until a worker (or a synthetic backend
// error) produces a response, and returns it. It returns ErrCapacity
// without ever touching the event loop if the pool is at capacity (§4.2).
//
// If a result cache is configured and already holds an answer for req, the
// job bypasses the queue entirely and the cached response is returned
// without ever incrementing numQueuedJobs.
func (p *WPool) SubmitJob(ctx context.Context, req RunRequest) (*RunResponse, error) {
	reqHash := hashRunRequest(req)

	if cached, ok := p.cache.Get(ctx, reqHash); ok {
		p.metrics.cacheHits.Inc()
		return cached, nil
	}
	p.metrics.cacheMisses.Inc()

	if !p.state.tryAdmit(p.maxQueue) {
		return nil, ErrCapacity
	}

	replyCh := make(chan *RunResponse, 1)
	job := &Job{
		Request: req,
		Sink:    sinkFunc(func(resp *RunResponse) { replyCh <- resp }),
		reqHash: reqHash,
	}
	p.state.enqueue(time.Now(), eNewJob{job: job})

	select {
	case resp := <-replyCh:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetAvailableVersions returns the sorted, de-duplicated union of every
// worker's advertised versions (§3).
func (p *WPool) GetAvailableVersions() []Version {
	return p.state.availableVersions()
}

// GetPoolStatus blocks until the event loop has produced a consistent
// snapshot of pool state and returns it (§6.3).
func (p *WPool) GetPoolStatus(ctx context.Context) (Status, error) {
	replyCh := make(chan Status, 1)
	p.state.enqueue(time.Now(), eStatus{deliver: func(s Status) { replyCh <- s }})

	select {
	case s := <-replyCh:
		return s, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// Close stops the event loop after it drains any events already due. The
// loop itself never exposed a shutdown path in the original design; adding
// one here is necessary for this implementation's cmd entrypoint to release
// listeners and background goroutines on SIGTERM.
func (p *WPool) Close() {
	p.state.enqueue(time.Now(), eShutdown{})
	<-p.loopDone
}
