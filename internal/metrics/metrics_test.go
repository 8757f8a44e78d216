package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/apicaller/internal/metrics"
)

func TestCollector_RecordCall(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	collector := metrics.New(registry)

	collector.RecordCall("GET", 200, 20*time.Millisecond)
	collector.RecordCall("GET", 200, 30*time.Millisecond)
	collector.RecordCall("DELETE", 404, 10*time.Millisecond)

	count, err := testutil.GatherAndCount(registry, "apicaller_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per method/status pair")

	count, err = testutil.GatherAndCount(registry, "apicaller_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCollector_RecordWaitAndError(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	collector := metrics.New(registry)

	collector.RecordWait(50 * time.Millisecond)
	collector.RecordError("GET", "status")
	collector.RecordError("GET", "status")

	count, err := testutil.GatherAndCount(registry, "apicaller_rate_limit_wait_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(registry, "apicaller_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollector_NilIsNoop(t *testing.T) {
	t.Parallel()

	var collector *metrics.Collector

	assert.NotPanics(t, func() {
		collector.RecordCall("GET", 200, time.Millisecond)
		collector.RecordWait(time.Millisecond)
		collector.RecordError("GET", "transport")
	})
}
