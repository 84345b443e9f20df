package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requestDuration *prometheus.HistogramVec
	pipelineResults *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cookassist_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route, method and status",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"route", "method", "status"},
		),
		pipelineResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cookassist_pipeline_results_total",
				Help: "Pipeline results served, by architecture",
			},
			[]string{"architecture"},
		),
	}
	reg.MustRegister(m.requestDuration, m.pipelineResults)
	return m
}

func (m *metrics) observeRequest(route, method string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *metrics) countResult(architecture string) {
	m.pipelineResults.WithLabelValues(architecture).Inc()
}
