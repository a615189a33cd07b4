package wpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_nextHealthCheckInterval(t *testing.T) {
	type inputs struct {
		prev time.Duration
	}
	type outputs struct {
		next time.Duration
	}
	tests := []struct {
		name    string
		inputs  inputs
		outputs outputs
	}{
		{
			name:    "zero floors to startIv",
			inputs:  inputs{prev: 0},
			outputs: outputs{next: time.Second},
		},
		{
			name:    "grows by 1.5x from startIv",
			inputs:  inputs{prev: time.Second},
			outputs: outputs{next: 1500 * time.Millisecond},
		},
		{
			name:    "grows again from 1.5s",
			inputs:  inputs{prev: 1500 * time.Millisecond},
			outputs: outputs{next: 2250 * time.Millisecond},
		},
		{
			name:    "clamps at the 1h ceiling",
			inputs:  inputs{prev: time.Hour},
			outputs: outputs{next: time.Hour},
		},
		{
			name:    "clamps just under the 1h ceiling",
			inputs:  inputs{prev: 50 * time.Minute},
			outputs: outputs{next: time.Hour},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextHealthCheckInterval(tt.inputs.prev)
			assert.Equal(t, tt.outputs.next, got)
		})
	}
}

func Test_nextHealthCheckInterval_monotonic(t *testing.T) {
	iv := time.Duration(0)
	for i := 0; i < 22; i++ {
		next := nextHealthCheckInterval(iv)
		assert.GreaterOrEqual(t, next, iv)
		assert.LessOrEqual(t, next, time.Hour)
		iv = next
	}
	assert.Equal(t, time.Hour, iv)
}
