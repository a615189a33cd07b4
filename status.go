package wpool

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// timeParts is the wire shape of a time.Duration/time.Time pair the status
// endpoint exposes for a disabled worker's lastCheck/waitInterval (§6.3):
// {sec, nsec}, mirroring how a language without a native Duration type
// would marshal one.
type timeParts struct {
	Sec  int64 `json:"sec"`
	Nsec int64 `json:"nsec"`
}

func durationParts(d time.Duration) timeParts {
	return timeParts{Sec: int64(d / time.Second), Nsec: int64(d % time.Second)}
}

func timeStampParts(t time.Time) timeParts {
	return timeParts{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}

// WorkerStatusView is one worker's entry in a Status snapshot.
type WorkerStatusView struct {
	Addr     WorkerAddr
	Disabled *[2]timeParts // [lastCheck, waitInterval]; nil when OK
	Versions []Version
	Idle     bool
}

// MarshalJSON renders the snake_case shape of §6.3:
// {addr: [host, pubkey], disabled: null | [{sec,nsec},{sec,nsec}], versions, idle}.
func (w WorkerStatusView) MarshalJSON() ([]byte, error) {
	type wire struct {
		Addr     [2]string   `json:"addr"`
		Disabled *[2]timeParts `json:"disabled"`
		Versions []Version   `json:"versions"`
		Idle     bool        `json:"idle"`
	}
	return json.Marshal(wire{
		Addr:     [2]string{w.Addr.Host, base64.StdEncoding.EncodeToString(w.Addr.Pubkey[:])},
		Disabled: w.Disabled,
		Versions: w.Versions,
		Idle:     w.Idle,
	})
}

// Status is the consistent snapshot produced by getPoolStatus (§4.5, §6.3).
type Status struct {
	Workers          []WorkerStatusView `json:"workers"`
	JobQueueLength   int                `json:"job_queue_length"`
	EventQueueLength int                `json:"event_queue_length"`
}

func workerStatusView(w *Worker, idle bool) WorkerStatusView {
	view := WorkerStatusView{
		Addr:     w.Addr,
		Versions: w.Versions,
		Idle:     idle,
	}
	if info, ok := w.Status.Disabled(); ok {
		view.Disabled = &[2]timeParts{
			timeStampParts(info.lastCheck),
			durationParts(info.waitInterval),
		}
	}
	return view
}
