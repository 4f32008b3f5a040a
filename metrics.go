package main

import "github.com/prometheus/client_golang/prometheus"

func init() {
	prometheus.MustRegister(metricsResolveRequestsTotal)
	prometheus.MustRegister(metricsResolveErrorsTotal)
	prometheus.MustRegister(metricsResolveDurationSeconds)
	prometheus.MustRegister(metricsIndexBytesParsedTotal)
}

var metricsResolveRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "htsget_resolve_requests_total",
		Help: "Ticket requests handled, by format and class",
	},
	[]string{"format", "class"},
)

var metricsResolveErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "htsget_resolver_errors_total",
		Help: "Ticket resolution failures, by error kind",
	},
	[]string{"kind"},
)

var metricsResolveDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "htsget_resolve_duration_seconds",
		Help: "Time spent computing a ticket response",
	},
	[]string{"format"},
)

var metricsIndexBytesParsedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "htsget_index_bytes_parsed_total",
		Help: "Bytes read from index files (BAI/CSI/TBI/CRAI/GZI), by index kind",
	},
	[]string{"index"},
)
