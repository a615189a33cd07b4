package wpool

import "time"

// startIv and maxIv are the floor and ceiling of the health-check backoff
// policy (§4.6). They are deliberately not configurable: the floor prevents
// a zero-interval tight loop on a freshly added worker (which starts
// Disabled(now, 0)), and the ceiling bounds how stale a dead worker's
// re-check cadence can get.
const (
	startIv = time.Second
	maxIv   = time.Hour
)

// nextHealthCheckInterval computes the next health-check backoff interval
// from the previous one: a pure function with no dependency on the event
// loop or any I/O, kept free-standing so it is unit-testable in isolation
// (§4.6, §8 property 6). prev is 0 for a worker that is freshly added or
// transitioning out of OK, which is what makes
// the very first call floor to startIv rather than 1.5x of it: growth is
// applied before the floor/ceiling clamp, not after.
func nextHealthCheckInterval(prev time.Duration) time.Duration {
	next := (prev * 3) / 2
	if next < startIv {
		return startIv
	}
	if next > maxIv {
		return maxIv
	}
	return next
}
