package wpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_sharedState_peekOrPop_ordering(t *testing.T) {
	s := newSharedState()
	now := time.Now()

	s.enqueue(now.Add(2*time.Second), eWorkerFailed{addr: WorkerAddr{Host: "late"}})
	s.enqueue(now.Add(1*time.Second), eWorkerFailed{addr: WorkerAddr{Host: "early"}})

	outcome, event, due := s.peekOrPop(now)
	assert.Equal(t, popFuture, outcome)
	assert.Nil(t, event)
	assert.True(t, due.Equal(now.Add(1*time.Second)))

	outcome, event, _ = s.peekOrPop(now.Add(1 * time.Second))
	require.Equal(t, popDue, outcome)
	assert.Equal(t, "early", event.(eWorkerFailed).addr.Host)

	outcome, event, due = s.peekOrPop(now.Add(1 * time.Second))
	assert.Equal(t, popFuture, outcome)
	assert.True(t, due.Equal(now.Add(2 * time.Second)))

	outcome, event, _ = s.peekOrPop(now.Add(2 * time.Second))
	require.Equal(t, popDue, outcome)
	assert.Equal(t, "late", event.(eWorkerFailed).addr.Host)

	outcome, _, _ = s.peekOrPop(now.Add(2 * time.Second))
	assert.Equal(t, popEmpty, outcome)
}

func Test_sharedState_tryAdmit(t *testing.T) {
	s := newSharedState()

	assert.True(t, s.tryAdmit(2))
	assert.True(t, s.tryAdmit(2))
	assert.False(t, s.tryAdmit(2))

	s.decrQueuedJobs()
	assert.True(t, s.tryAdmit(2))
}

func Test_mergeSortedUnique(t *testing.T) {
	got := mergeSortedUnique(
		[]Version{"1.0", "2.0"},
		[]Version{"1.5", "2.0", "0.9"},
	)
	assert.Equal(t, []Version{"0.9", "1.0", "1.5", "2.0"}, got)
}

func Test_sharedState_wakeup_is_latched_not_counted(t *testing.T) {
	s := newSharedState()
	s.signalWakeup()
	s.signalWakeup()
	s.signalWakeup()

	select {
	case <-s.wakeupCh:
	default:
		t.Fatal("expected wakeup to be signalled")
	}

	select {
	case <-s.wakeupCh:
		t.Fatal("wakeup should not have queued a second signal")
	default:
	}
}
