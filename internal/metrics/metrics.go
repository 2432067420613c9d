// Package metrics holds the Prometheus collectors of the indicator engine and
// the price loaders. A nil *Metrics records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	KernelCalls    *prometheus.CounterVec   // labels: family
	ComputeSeconds *prometheus.HistogramVec // labels: family
	ComputeErrors  *prometheus.CounterVec   // labels: family
	LoaderRequests *prometheus.CounterVec   // labels: loader, outcome
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		KernelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indicator_kernel_calls_total",
			Help: "Kernel invocations, one per symbol per compute",
		}, []string{"family"}),
		ComputeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "indicator_compute_seconds",
			Help:    "Duration of one multi-symbol compute call",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"family"}),
		ComputeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indicator_compute_errors_total",
			Help: "Compute calls rejected before any kernel call",
		}, []string{"family"}),
		LoaderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loader_requests_total",
			Help: "Per-symbol price requests made by loaders",
		}, []string{"loader", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.KernelCalls, m.ComputeSeconds, m.ComputeErrors, m.LoaderRequests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) KernelCalled(family string) {
	if m == nil {
		return
	}
	m.KernelCalls.WithLabelValues(family).Inc()
}

func (m *Metrics) ObserveCompute(family string, d time.Duration) {
	if m == nil {
		return
	}
	m.ComputeSeconds.WithLabelValues(family).Observe(d.Seconds())
}

func (m *Metrics) ComputeRejected(family string) {
	if m == nil {
		return
	}
	m.ComputeErrors.WithLabelValues(family).Inc()
}

func (m *Metrics) LoaderRequest(loader string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.LoaderRequests.WithLabelValues(loader, outcome).Inc()
}
