package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerStop(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)

	elapsed := timer.Stop()
	assert.GreaterOrEqual(t, elapsed, time.Millisecond)

	// Stop is read-only; a second call keeps measuring from the start.
	assert.GreaterOrEqual(t, timer.Stop(), elapsed)
}

func TestObserveRun(t *testing.T) {
	before := testutil.CollectAndCount(RunDuration)
	require.Equal(t, 1, before)

	ObserveRun(250 * time.Millisecond)
}

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(RecordsExtracted)
	RecordsExtracted.Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(RecordsExtracted))

	beforeErr := testutil.ToFloat64(StageErrors.WithLabelValues("extract"))
	StageErrors.WithLabelValues("extract").Inc()
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(StageErrors.WithLabelValues("extract")))
}
