package wpool

import "errors"

var (
	// ErrContextCanceled is not returned by WPool's blocking calls: SubmitJob
	// and GetPoolStatus return ctx.Err() when ctx is done before their result
	// is ready.
	ErrContextCanceled = errors.New("context canceled")

	// ErrCapacity is returned by SubmitJob when admission finds
	// numQueuedJobs already at maxQueuedJobs (§4.2's "not submitted").
	ErrCapacity = errors.New("pool is at capacity")

	// ErrInvalidHost is returned by AddWorker when host is empty or contains a
	// byte >= 128.
	ErrInvalidHost = errors.New("worker host must be ASCII")

	// ErrBackend is the reason carried by a synthetic RunResponse produced
	// when no worker is available or a worker RPC failed.
	ErrBackend = errors.New("backend error")

	// ErrSignatureMismatch is returned by WorkerClient implementations when a
	// worker's response signature does not verify against its known pubkey.
	ErrSignatureMismatch = errors.New("worker response signature mismatch")

	// ErrPoolClosed names a closed pool. No WPool method returns it: calls made
	// after Close are not rejected, and SubmitJob and GetPoolStatus then wait
	// until their ctx is done.
	ErrPoolClosed = errors.New("pool is closed")
)
