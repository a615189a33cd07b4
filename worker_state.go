package wpool

// WorkerStatus is the tagged variant OK | Disabled(lastCheck, waitInterval)
// from §3. disabled is nil for OK, non-nil for Disabled; callers should use
// IsDisabled/Disabled rather than touching the field directly.
type WorkerStatus struct {
	disabled *disabledInfo
}

func okStatus() WorkerStatus {
	return WorkerStatus{}
}

func disabledStatus(info disabledInfo) WorkerStatus {
	return WorkerStatus{disabled: &info}
}

func (s WorkerStatus) IsDisabled() bool {
	return s.disabled != nil
}

// Disabled returns the disabledInfo and true if s is Disabled, or the zero
// value and false if s is OK.
func (s WorkerStatus) Disabled() (disabledInfo, bool) {
	if s.disabled == nil {
		return disabledInfo{}, false
	}
	return *s.disabled, true
}

// Worker is created by EAddWorker, mutated only by event-loop handlers, and
// never destroyed (deletion is a non-goal, §1).
type Worker struct {
	Addr     WorkerAddr
	Status   WorkerStatus
	Versions []Version
}
