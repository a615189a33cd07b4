package wpool

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/compilepool/poold/sloghelper"
)

// runLoop is the single-consumer event loop of §4.1. It owns poolState for
// its entire lifetime; no other goroutine ever touches it.
func (p *WPool) runLoop(ctx context.Context) {
	logger := sloghelper.FromContext(ctx, sloghelper.EventLoopLoggerKey)
	state := newPoolState(time.Now().UnixNano())
	defer close(p.loopDone)

	for {
		now := time.Now()
		outcome, event, due := p.state.peekOrPop(now)

		switch outcome {
		case popDue:
			if _, done := event.(eShutdown); done {
				logger.InfoContext(ctx, "event loop shutting down")
				return
			}
			p.handle(ctx, state, event)
			continue
		case popFuture:
			p.sleepUntil(due)
			continue
		default: // popEmpty
			p.sleepForever()
			continue
		}
	}
}

// sleepUntil waits for either the wakeup latch or the deadline, whichever
// comes first, per §4.1 step 3.
func (p *WPool) sleepUntil(due time.Time) {
	timer := time.NewTimer(time.Until(due))
	defer timer.Stop()
	select {
	case <-p.state.wakeupCh:
		p.state.takeWakeup()
	case <-timer.C:
	}
}

// sleepForever waits unconditionally on the wakeup latch, per §4.1 step 4.
func (p *WPool) sleepForever() {
	<-p.state.wakeupCh
	p.state.takeWakeup()
}

func (p *WPool) handle(ctx context.Context, state *poolState, event Event) {
	switch e := event.(type) {
	case eAddWorker:
		p.handleAddWorker(ctx, state, e)
	case eNewJob:
		p.handleNewJob(ctx, state, e)
	case eWorkerIdle:
		p.handleWorkerIdle(ctx, state, e)
	case eVersionRefresh:
		p.handleVersionRefresh(ctx, state, e)
	case eWorkerFailed:
		p.handleWorkerFailed(ctx, state, e)
	case eWorkerVersions:
		p.handleWorkerVersions(ctx, state, e)
	case eStatus:
		p.handleStatus(state, e)
	}
}

// handleAddWorker implements §4.1's EAddWorker row. A duplicate host still
// gets a fresh EVersionRefresh so an apparently-stuck worker can heal
// (SPEC_FULL.md §9 decision).
func (p *WPool) handleAddWorker(ctx context.Context, state *poolState, e eAddWorker) {
	logger := sloghelper.FromContext(ctx, sloghelper.PoolLoggerKey)

	if _, exists := state.workers[e.addr.Host]; exists {
		logger.WarnContext(ctx, "duplicate worker added, re-checking", slog.String("host", e.addr.Host))
		p.state.enqueue(time.Now(), eVersionRefresh{addr: e.addr})
		return
	}

	state.workers[e.addr.Host] = &Worker{
		Addr:   e.addr,
		Status: disabledStatus(disabledInfo{lastCheck: time.Now(), waitInterval: 0}),
	}
	p.metrics.workersTotal.Inc()
	p.state.enqueue(time.Now(), eVersionRefresh{addr: e.addr})
}

// handleNewJob implements §4.1's ENewJob row.
func (p *WPool) handleNewJob(ctx context.Context, state *poolState, e eNewJob) {
	job := e.job

	if len(state.workers) == 0 {
		p.state.decrQueuedJobs()
		p.metrics.dispatchOutcomes.WithLabelValues("no_workers").Inc()
		deliverAsync(job.Sink, &RunResponse{Err: ErrBackend})
		return
	}

	host, ok := state.pickIdle()
	if !ok {
		state.pushBacklog(job)
		p.metrics.backlogDepth.Set(float64(len(state.backlog)))
		return
	}

	p.state.decrQueuedJobs()
	worker := state.workers[host]
	p.dispatch(ctx, state, worker, job)
}

// handleWorkerIdle implements §4.1's EWorkerIdle row.
func (p *WPool) handleWorkerIdle(ctx context.Context, state *poolState, e eWorkerIdle) {
	worker, ok := state.workers[e.addr.Host]
	if !ok {
		return
	}

	if worker.Status.IsDisabled() {
		state.unmarkIdle(e.addr.Host)
		return
	}

	if job, ok := state.popBacklog(); ok {
		p.metrics.backlogDepth.Set(float64(len(state.backlog)))
		p.state.decrQueuedJobs()
		p.dispatch(ctx, state, worker, job)
		return
	}

	state.markIdle(e.addr.Host)
}

// handleVersionRefresh implements §4.1's EVersionRefresh row: spawns the
// health-check RPC and never mutates poolState directly.
func (p *WPool) handleVersionRefresh(ctx context.Context, state *poolState, e eVersionRefresh) {
	go func() {
		vctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		versions, err := p.client.GetVersions(vctx, e.addr)
		if err != nil {
			p.state.enqueue(time.Now(), eWorkerFailed{addr: e.addr})
			return
		}
		p.state.enqueue(time.Now(), eWorkerVersions{addr: e.addr, versions: versions})
	}()
}

// handleWorkerFailed implements §4.1's EWorkerFailed row and §4.6's backoff
// policy.
func (p *WPool) handleWorkerFailed(ctx context.Context, state *poolState, e eWorkerFailed) {
	logger := sloghelper.FromContext(ctx, sloghelper.PoolLoggerKey)

	worker, ok := state.workers[e.addr.Host]
	if !ok {
		logger.WarnContext(ctx, "EWorkerFailed for unknown worker", slog.String("host", e.addr.Host))
		return
	}

	// prevIv is 0 both for a worker transitioning out of OK and for one
	// already Disabled(_, 0) (just added, never yet failed) — either way
	// nextHealthCheckInterval floors the result to startIv, matching §4.1's
	// "previous was OK -> iv = startIv" row without a separate branch.
	var prevIv time.Duration
	if info, disabled := worker.Status.Disabled(); disabled {
		prevIv = info.waitInterval
	}
	iv := nextHealthCheckInterval(prevIv)

	state.unmarkIdle(e.addr.Host)
	worker.Status = disabledStatus(disabledInfo{lastCheck: time.Now(), waitInterval: iv})
	p.metrics.healthCheckInterval.Observe(iv.Seconds())
	p.state.enqueue(time.Now().Add(iv), eVersionRefresh{addr: e.addr})
}

// handleWorkerVersions implements §4.1's EWorkerVersions row.
func (p *WPool) handleWorkerVersions(ctx context.Context, state *poolState, e eWorkerVersions) {
	worker, ok := state.workers[e.addr.Host]
	if !ok {
		sloghelper.FromContext(ctx, sloghelper.PoolLoggerKey).WarnContext(ctx, "EWorkerVersions for unknown worker", slog.String("host", e.addr.Host))
		return
	}

	wasDisabled := worker.Status.IsDisabled()
	worker.Status = okStatus()
	worker.Versions = e.versions
	p.state.mergeVersions(e.versions)

	if wasDisabled {
		p.state.enqueue(time.Now(), eWorkerIdle{addr: e.addr})
	}
}

// handleStatus implements §4.1's EStatus row / §4.5.
func (p *WPool) handleStatus(state *poolState, e eStatus) {
	hosts := make([]string, 0, len(state.workers))
	for host := range state.workers {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	views := make([]WorkerStatusView, 0, len(hosts))
	for _, host := range hosts {
		worker := state.workers[host]
		_, idle := state.idle[host]
		views = append(views, workerStatusView(worker, idle))
	}

	status := Status{
		Workers:          views,
		JobQueueLength:   p.state.queuedJobs(),
		EventQueueLength: p.state.queueLength(),
	}

	go e.deliver(status)
}
