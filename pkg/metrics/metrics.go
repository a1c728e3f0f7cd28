// Package metrics exposes the Prometheus registry used by all packages and
// exports it for the node_exporter textfile collector. Metrics are defined
// in their own packages (client, ratelimit, pagination) and registered via
// promauto on the default registry.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the registerer all metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer WriteTextfile reads from.
var Gatherer = prometheus.DefaultGatherer

// WriteTextfile writes the current value of all metrics to path in the
// Prometheus text format. The file is replaced atomically.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(path, Gatherer)
}

// WriteTextfileFrom writes the metrics gathered from g to path.
func WriteTextfileFrom(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - yelp_requests_total{status} (Counter): requests by HTTP status or "network_error"
//   - yelp_request_duration_seconds (Histogram): request duration
//   - yelp_errors_total{class} (Counter): failures by class (client, server, rate_limit, network)
//
// Quota Metrics (pkg/ratelimit):
//   - yelp_quota_remaining (Gauge): requests left in the daily window
//   - yelp_quota_daily_limit (Gauge): daily request quota
//   - yelp_quota_low_total (Counter): responses received with a low or exhausted quota
//
// Run Metrics (pkg/pagination):
//   - restaurant_export_pages_total (Counter): non-empty pages fetched
//   - restaurant_export_records_total (Counter): records collected
//   - restaurant_export_runs_total{stop_reason} (Counter): finished loops by stop reason
//
// Example Prometheus Queries:
//
//   # Share of runs cut short by provider errors
//   sum(restaurant_export_runs_total{stop_reason="http_error"}) / sum(restaurant_export_runs_total)
//
//   # Daily quota nearly used up
//   yelp_quota_remaining < 50
