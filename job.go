package wpool

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ResponseSink is the single-method callback interface a Job's result is
// delivered through. It must be invoked exactly once (§3 invariant 4).
// Modeled as an interface rather than a bare func so SubmitJob can wrap a
// channel-backed sink while other callers (e.g. future batch submission)
// can supply their own.
type ResponseSink interface {
	Deliver(resp *RunResponse)
}

type sinkFunc func(resp *RunResponse)

func (f sinkFunc) Deliver(resp *RunResponse) {
	f(resp)
}

// Job pairs a request with the sink its response must reach exactly once.
type Job struct {
	Request  RunRequest
	Sink     ResponseSink
	reqHash  string // set by SubmitJob on every job; empty only if hashing failed
}

// deliverAsync invokes sink.Deliver in its own goroutine so a slow or
// blocked client can never stall the event loop or a dispatch task (§4.4).
func deliverAsync(sink ResponseSink, resp *RunResponse) {
	go sink.Deliver(resp)
}

// hashRunRequest computes the deterministic content hash a result cache
// keys on (§4.2). Marshaling to JSON before hashing rather than hashing the
// struct's fields by hand keeps this in step with RunRequest as it grows.
func hashRunRequest(req RunRequest) string {
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
