package wpool

import (
	"sort"
	"time"
)

// Version is an opaque identifier of a compiler toolchain offered by a
// worker, treated as a totally-ordered string.
type Version string

// WorkerAddr identifies a worker node: host is the map key used throughout
// the pool, pubkey is the worker's Ed25519 public key used to verify its
// signed responses.
type WorkerAddr struct {
	Host   string
	Pubkey [32]byte
}

// RunRequest is the opaque payload a client wants executed by some worker.
// The pool never inspects its contents; it is forwarded verbatim to the
// WorkerClient.
type RunRequest struct {
	Version Version
	Source  []byte
	Args    []string
}

// RunResponse is the opaque result of a RunRequest. When Err is non-nil the
// response is synthetic: the pool could not reach any worker, or the worker
// it tried failed, and Err is always ErrBackend in that case (the pool makes
// no distinction between timeout, transport, or signature-verification
// failure, per §6.2).
type RunResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Err      error
}

// disabledInfo records when a worker was last checked and how long until the
// next check is due. waitInterval is owned by the backoff policy in
// backoff.go.
type disabledInfo struct {
	lastCheck    time.Time
	waitInterval time.Duration
}

// sortVersions sorts Versions ascending by their string ordering, per §3's
// "sorted de-duplicated union".
func sortVersions(vs []Version) {
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
}
