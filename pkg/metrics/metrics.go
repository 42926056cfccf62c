package metrics

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConnectionsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tinyhttpd_connections_accepted_total",
		Help: "Connections accepted by the listener.",
	})

	AcceptErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tinyhttpd_accept_errors_total",
		Help: "Accept failures other than poll timeouts.",
	})

	Responses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tinyhttpd_responses_total",
		Help: "Responses written, by status code.",
	}, []string{"code"})

	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tinyhttpd_pool_queue_depth",
		Help: "Jobs waiting for a worker.",
	})

	BusyWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tinyhttpd_pool_busy_workers",
		Help: "Workers currently executing a job.",
	})

	JobsExecuted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tinyhttpd_pool_jobs_total",
		Help: "Jobs run to completion by pool workers.",
	})

	JobPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tinyhttpd_pool_job_panics_total",
		Help: "Jobs that panicked and were recovered by the worker.",
	})

	RequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tinyhttpd_request_duration_seconds",
		Help:    "Time from connection pickup to response write.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsAccepted,
		AcceptErrors,
		Responses,
		QueueDepth,
		BusyWorkers,
		JobsExecuted,
		JobPanics,
		RequestDuration,
	)
}

var served, failed atomic.Uint64

// ObserveResponse counts one response with the given numeric code.
func ObserveResponse(code int) {
	Responses.WithLabelValues(strconv.Itoa(code)).Inc()
	served.Add(1)
	if code >= 400 {
		failed.Add(1)
	}
}

// Totals returns responses written since start and how many of them were
// 4xx or 5xx.
func Totals() (total, errors uint64) {
	return served.Load(), failed.Load()
}
