// Package metrics holds the Prometheus collectors shared by the services and
// the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "linkinbio"

var (
	ResolverDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolver_decisions_total",
		Help:      "Inbound paths by resolver decision.",
	}, []string{"decision"})

	LinkOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "link_operations_total",
		Help:      "Ordered link store operations by result kind.",
	}, []string{"op", "result"})

	PageLinkFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_link_fetch_failures_total",
		Help:      "Tenant pages served without links because the link fetch failed.",
	})

	PageCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_cache_lookups_total",
		Help:      "Tenant page cache lookups by result.",
	}, []string{"result"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})
)

// ObserveLinkOp records the outcome of one link store operation.
func ObserveLinkOp(op string, kind string) {
	if kind == "" {
		kind = "ok"
	}
	LinkOperations.WithLabelValues(op, kind).Inc()
}
