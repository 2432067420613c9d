package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.KernelCalled("SMA")
	m.KernelCalled("SMA")
	m.ComputeRejected("EMA")
	m.ObserveCompute("SMA", 2*time.Millisecond)
	m.LoaderRequest("Wallex", nil)
	m.LoaderRequest("Wallex", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.KernelCalls.WithLabelValues("SMA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComputeErrors.WithLabelValues("EMA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoaderRequests.WithLabelValues("Wallex", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoaderRequests.WithLabelValues("Wallex", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ComputeSeconds))

	_, err = New(reg)
	assert.Error(t, err, "collectors are already registered")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.KernelCalled("SMA")
		m.ObserveCompute("SMA", time.Second)
		m.ComputeRejected("SMA")
		m.LoaderRequest("Memory", nil)
	})
}
