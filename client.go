package wpool

import "context"

// WorkerClient is the external "worker client" collaborator of §6.2: two
// RPCs against a single remote worker, both collapsing any failure (timeout,
// network, signature mismatch) to (nil, err) uniformly — the event loop never
// distinguishes *why* an RPC failed, only that it did.
type WorkerClient interface {
	// GetVersions lists the compiler versions a worker currently offers.
	GetVersions(ctx context.Context, addr WorkerAddr) ([]Version, error)

	// RunJob executes req on the worker at addr, signing the request with
	// secretKey and verifying the response against addr.Pubkey.
	RunJob(ctx context.Context, secretKey [64]byte, addr WorkerAddr, req RunRequest) (*RunResponse, error)
}
