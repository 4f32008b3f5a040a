package main

import "time"

// promMetricsRecorder adapts this package's prometheus vars to
// httpapi.MetricsRecorder, keeping httpapi free of a direct prometheus
// dependency on the root package's globals.
type promMetricsRecorder struct{}

func (promMetricsRecorder) ObserveRequest(format, class string) {
	metricsResolveRequestsTotal.WithLabelValues(format, class).Inc()
}

func (promMetricsRecorder) ObserveError(kind string) {
	metricsResolveErrorsTotal.WithLabelValues(kind).Inc()
}

func (promMetricsRecorder) ObserveDuration(format string, d time.Duration) {
	metricsResolveDurationSeconds.WithLabelValues(format).Observe(d.Seconds())
}
