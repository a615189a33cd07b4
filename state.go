package wpool

import (
	"math/rand"
	"sort"
)

// poolState is the event-loop-local state of §3: never observed
// concurrently, touched only by the loop goroutine and its handlers.
type poolState struct {
	workers map[string]*Worker   // host -> Worker
	idle    map[string]struct{}  // host set, subset of OK workers (invariant 3)
	backlog []*Job               // FIFO
	rng     *rand.Rand
}

func newPoolState(seed int64) *poolState {
	return &poolState{
		workers: make(map[string]*Worker),
		idle:    make(map[string]struct{}),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (s *poolState) pushBacklog(job *Job) {
	s.backlog = append(s.backlog, job)
}

func (s *poolState) popBacklog() (*Job, bool) {
	if len(s.backlog) == 0 {
		return nil, false
	}
	job := s.backlog[0]
	s.backlog = s.backlog[1:]
	return job, true
}

func (s *poolState) markIdle(host string) {
	s.idle[host] = struct{}{}
}

func (s *poolState) unmarkIdle(host string) {
	delete(s.idle, host)
}

// pickIdle removes and returns a uniformly random member of the idle set,
// advancing s.rng exactly once (§9 "Random worker selection"). Go's map
// iteration order is randomized per-process regardless of s.rng's seed, so
// the candidates are sorted before indexing: determinism under a fixed seed
// depends only on rng.Intn's sequence and the idle set's contents, never on
// map iteration order.
func (s *poolState) pickIdle() (string, bool) {
	n := len(s.idle)
	if n == 0 {
		return "", false
	}

	hosts := make([]string, 0, n)
	for host := range s.idle {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	host := hosts[s.rng.Intn(n)]
	delete(s.idle, host)
	return host, true
}
