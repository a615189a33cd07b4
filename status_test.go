package wpool

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Status_JSON_shape(t *testing.T) {
	pubkey := [32]byte{1, 2, 3}
	idleWorker := &Worker{
		Addr:     WorkerAddr{Host: "worker-1", Pubkey: pubkey},
		Status:   okStatus(),
		Versions: []Version{"9.6.3", "9.8.1"},
	}
	disabledWorker := &Worker{
		Addr: WorkerAddr{Host: "worker-2", Pubkey: pubkey},
		Status: disabledStatus(disabledInfo{
			lastCheck:    time.Unix(1000, 500),
			waitInterval: 1500 * time.Millisecond,
		}),
	}

	status := Status{
		Workers: []WorkerStatusView{
			workerStatusView(idleWorker, true),
			workerStatusView(disabledWorker, false),
		},
		JobQueueLength:   3,
		EventQueueLength: 5,
	}

	body, err := json.Marshal(status)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, float64(3), decoded["job_queue_length"])
	assert.Equal(t, float64(5), decoded["event_queue_length"])

	workers := decoded["workers"].([]any)
	require.Len(t, workers, 2)

	w1 := workers[0].(map[string]any)
	assert.Nil(t, w1["disabled"])
	assert.Equal(t, true, w1["idle"])
	addr1 := w1["addr"].([]any)
	assert.Equal(t, "worker-1", addr1[0])
	assert.Equal(t, base64.StdEncoding.EncodeToString(pubkey[:]), addr1[1])

	w2 := workers[1].(map[string]any)
	require.NotNil(t, w2["disabled"])
	disabled := w2["disabled"].([]any)
	require.Len(t, disabled, 2)
	lastCheck := disabled[0].(map[string]any)
	assert.Equal(t, float64(1000), lastCheck["sec"])
	waitInterval := disabled[1].(map[string]any)
	assert.Equal(t, float64(1), waitInterval["sec"])
	assert.Equal(t, float64(500*int64(time.Millisecond)), waitInterval["nsec"])
	assert.Equal(t, false, w2["idle"])
}
