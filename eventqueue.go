package wpool

import (
	"container/heap"
	"sync"
	"time"
)

// scheduledEvent pairs an Event with the monotonic time it becomes due.
type scheduledEvent struct {
	due   time.Time
	event Event
}

// eventHeap is a container/heap.Interface ordered by due time. No
// priority-queue library appears anywhere in the retrieved example pack (see
// DESIGN.md); container/heap is the standard idiomatic choice for this shape
// in Go and keeps the peek/pop/insert operations O(log n) without pulling in
// an unrelated dependency just to hold (time.Time, Event) pairs.
type eventHeap []scheduledEvent

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].due.Before(h[j].due) }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(scheduledEvent)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// sharedState is the cross-goroutine state of §3: versions, numQueuedJobs,
// the event queue, and the wakeup latch, all guarded by one mutex so every
// compound operation (peek-then-pop, check-then-increment) is a single
// atomic transaction as §4.1/§4.2 require.
type sharedState struct {
	mu            sync.Mutex
	heap          eventHeap
	versions      []Version
	numQueuedJobs int
	wakeupCh      chan struct{} // capacity 1, level-triggered latch
	closed        bool
}

func newSharedState() *sharedState {
	return &sharedState{
		wakeupCh: make(chan struct{}, 1),
	}
}

// signalWakeup sets the latch. Signalling while already set is a no-op,
// matching the 0/1-latch semantics of §4.1/§9.
func (s *sharedState) signalWakeup() {
	select {
	case s.wakeupCh <- struct{}{}:
	default:
	}
}

// takeWakeup consumes the latch, resetting it to 0.
func (s *sharedState) takeWakeup() {
	select {
	case <-s.wakeupCh:
	default:
	}
}

// enqueue inserts event at due and signals wakeup right after the insert,
// once the lock is released, per the wakeup discipline in §4.1.
func (s *sharedState) enqueue(due time.Time, event Event) {
	s.mu.Lock()
	heap.Push(&s.heap, scheduledEvent{due: due, event: event})
	s.mu.Unlock()
	s.signalWakeup()
}

type popOutcome int

const (
	popEmpty popOutcome = iota
	popFuture
	popDue
)

// peekOrPop implements the three-way decision of §4.1 step 2 as one atomic
// transaction: pop and return the due event, or report how long until the
// next one, or report the queue is empty.
func (s *sharedState) peekOrPop(now time.Time) (popOutcome, Event, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.heap) == 0 {
		return popEmpty, nil, time.Time{}
	}

	head := s.heap[0]
	if head.due.After(now) {
		return popFuture, nil, head.due
	}

	popped := heap.Pop(&s.heap).(scheduledEvent)
	return popDue, popped.event, time.Time{}
}

func (s *sharedState) queueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.heap)
}

// tryAdmit is submitJob's atomic check-then-increment (§4.2): it fails
// without mutating anything if numQueuedJobs is already at cap.
func (s *sharedState) tryAdmit(maxQueuedJobs int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.numQueuedJobs >= maxQueuedJobs {
		return false
	}
	s.numQueuedJobs++
	return true
}

func (s *sharedState) decrQueuedJobs() {
	s.mu.Lock()
	s.numQueuedJobs--
	s.mu.Unlock()
}

func (s *sharedState) queuedJobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numQueuedJobs
}

// mergeVersions sorts-then-deduplicates versions into the shared,
// ascending, deduplicated union required by §3/§4.1's EWorkerVersions
// handler and §6.1's getAvailableVersions.
func (s *sharedState) mergeVersions(fresh []Version) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions = mergeSortedUnique(s.versions, fresh)
}

func (s *sharedState) availableVersions() []Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Version, len(s.versions))
	copy(out, s.versions)
	return out
}

func mergeSortedUnique(existing, fresh []Version) []Version {
	set := make(map[Version]struct{}, len(existing)+len(fresh))
	for _, v := range existing {
		set[v] = struct{}{}
	}
	for _, v := range fresh {
		set[v] = struct{}{}
	}

	out := make([]Version, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sortVersions(out)
	return out
}
