package wpool

import "github.com/prometheus/client_golang/prometheus"

// poolMetrics collects every Prometheus series this pool exposes. Grounded
// on bamboo's prometheus_event_handler.go (same register-on-construction
// pattern, same counter-per-outcome shape) but widened from four job
// counters into the queue/worker/cache/latency picture this dispatcher
// actually needs.
type poolMetrics struct {
	workersTotal         prometheus.Counter
	backlogDepth         prometheus.Gauge
	dispatchOutcomes     *prometheus.CounterVec
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter
	healthCheckInterval  prometheus.Histogram
	rpcLatency           prometheus.Histogram
}

// newPoolMetrics constructs and registers every series against reg. A nil
// reg uses prometheus.DefaultRegisterer, matching bamboo's bare
// prometheus.Register calls; tests pass a fresh prometheus.NewRegistry() so
// repeated pool construction across test cases never collides on duplicate
// registration.
func newPoolMetrics(reg prometheus.Registerer) *poolMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &poolMetrics{
		workersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poold_workers_registered_total",
			Help: "Number of distinct workers registered by EAddWorker; duplicate adds are not counted.",
		}),
		backlogDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poold_backlog_depth",
			Help: "Current length of the in-memory job backlog.",
		}),
		dispatchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poold_dispatch_outcomes_total",
			Help: "Outcomes of job dispatch, labeled ok|worker_error|no_workers.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poold_result_cache_hits_total",
			Help: "SubmitJob calls answered directly from the result cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poold_result_cache_misses_total",
			Help: "SubmitJob calls that found no cached result.",
		}),
		healthCheckInterval: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "poold_health_check_interval_seconds",
			Help:    "Backoff interval chosen on each EWorkerFailed transition.",
			Buckets: prometheus.ExponentialBuckets(1, 1.5, 12),
		}),
		rpcLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "poold_worker_rpc_latency_seconds",
			Help:    "Latency of WorkerClient.RunJob round trips.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.workersTotal,
		m.backlogDepth,
		m.dispatchOutcomes,
		m.cacheHits,
		m.cacheMisses,
		m.healthCheckInterval,
		m.rpcLatency,
	)

	return m
}
