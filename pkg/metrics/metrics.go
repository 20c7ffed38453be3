// Package metrics holds the Prometheus registry the CMC packages register
// with and serves it. Metrics are defined in their own packages (client,
// pagination, snapshot) through promauto.With(Registry).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry receives every CMC metric.
var Registry prometheus.Registerer = prometheus.DefaultRegisterer

// Gatherer is read by Handler. It must see what Registry collects.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Handler serves Gatherer in the Prometheus exposition format and counts
// its own scrapes on Registry.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(Registry, promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}))
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - cmc_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//     ("transport_error" / "decode_error" when no envelope was decoded)
//   - cmc_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - cmc_errors_total{class} (Counter): Failed envelopes by class (transport, decode, domain, pagination)
//
// Pagination Metrics (pkg/pagination):
//   - cmc_pages_fetched_total (Counter): Ticker pages fetched while collecting
//   - cmc_aggregations_total{result} (Counter): Collections by result (success, failed, budget_exhausted)
//
// Snapshot Metrics (pkg/snapshot):
//   - cmc_snapshot_writes_total (Counter): Snapshots written
//   - cmc_snapshot_reads_total{result} (Counter): Reads by result (hit, miss)
//   - cmc_snapshot_errors_total{operation} (Counter): Store errors by operation
//   - cmc_snapshot_size_bytes (Gauge): Size of the last written snapshot
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(cmc_errors_total[5m])
//
//   # Pages per Collection
//   rate(cmc_pages_fetched_total[1h]) / rate(cmc_aggregations_total[1h])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(cmc_request_duration_seconds_bucket[5m]))
