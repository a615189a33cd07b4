package wpool

import (
	"context"
	"log/slog"
	"time"

	"github.com/compilepool/poold/sloghelper"
)

// dispatch implements §4.4: it runs the worker RPC off the event loop,
// delivers the job's callback in its own goroutine, and enqueues exactly
// one follow-up event (EWorkerIdle on success, EWorkerFailed on failure).
// state is not read; worker.Addr is captured before the goroutine starts
// and nothing in the goroutine touches poolState.
func (p *WPool) dispatch(ctx context.Context, state *poolState, worker *Worker, job *Job) {
	addr := worker.Addr
	logger := sloghelper.FromContext(ctx, sloghelper.PoolLoggerKey)

	go func() {
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		start := time.Now()
		resp, err := p.client.RunJob(rctx, p.secret, addr, job.Request)
		p.metrics.rpcLatency.Observe(time.Since(start).Seconds())

		if err != nil {
			logger.WarnContext(ctx, "worker RPC failed", slog.String("host", addr.Host), slog.Any("err", err))
			p.metrics.dispatchOutcomes.WithLabelValues("worker_error").Inc()
			p.audit.Publish(ctx, "dispatch_failed", addr)
			deliverAsync(job.Sink, &RunResponse{Err: ErrBackend})
			p.state.enqueue(time.Now(), eWorkerFailed{addr: addr})
			return
		}

		p.metrics.dispatchOutcomes.WithLabelValues("ok").Inc()
		p.audit.Publish(ctx, "dispatch_ok", addr)
		deliverAsync(job.Sink, resp)

		if job.reqHash != "" {
			p.cache.Set(ctx, job.reqHash, resp)
		}

		p.state.enqueue(time.Now(), eWorkerIdle{addr: addr})
	}()
}
