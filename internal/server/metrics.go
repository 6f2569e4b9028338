package server

import (
	"time"

	"github.com/goplus/rslsw/ide/inline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts handled LSP messages.
	// Labels: method, status (ok, error)
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rslsw",
		Subsystem: "lsp",
		Name:      "requests_total",
		Help:      "Total LSP requests and notifications handled",
	}, []string{"method", "status"})

	// requestLatency measures handler latency.
	// Labels: method
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rslsw",
		Subsystem: "lsp",
		Name:      "request_duration_seconds",
		Help:      "LSP handler latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method"})

	// inlineFailures counts refused inline-variable refactorings.
	// Labels: reason (see inline.Reason)
	inlineFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rslsw",
		Subsystem: "inline",
		Name:      "failures_total",
		Help:      "Total inline-variable refactorings refused by reason",
	}, []string{"reason"})
)

func observeRequest(method string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	requestsTotal.WithLabelValues(method, status).Inc()
	requestLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func recordInlineFailure(err error) {
	inlineFailures.WithLabelValues(inline.Reason(err)).Inc()
}
