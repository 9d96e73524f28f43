package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Aggregation metrics
	AggregationDuration prometheus.Histogram
	AggregatedEntries   prometheus.Gauge
	DroppedRecords      prometheus.Counter
	SkippedSections     prometheus.Counter
	SourceLoadErrors    *prometheus.CounterVec
	RefreshesTotal      *prometheus.CounterVec

	// Layout metrics
	LayoutDuration  prometheus.Histogram
	LayoutFallbacks prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			AggregationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "trendcloud_aggregation_duration_seconds",
				Help:    "Time spent aggregating all hashtag sources",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			}),
			AggregatedEntries: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "trendcloud_aggregated_entries",
				Help: "Number of entries in the current snapshot",
			}),
			DroppedRecords: promauto.NewCounter(prometheus.CounterOpts{
				Name: "trendcloud_dropped_records_total",
				Help: "Raw hashtag records dropped for missing names",
			}),
			SkippedSections: promauto.NewCounter(prometheus.CounterOpts{
				Name: "trendcloud_skipped_sections_total",
				Help: "Malformed country sections or sources skipped during aggregation",
			}),
			SourceLoadErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "trendcloud_source_load_errors_total",
				Help: "Source loader failures",
			}, []string{"source"}),
			RefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "trendcloud_refreshes_total",
				Help: "Snapshot refreshes by outcome",
			}, []string{"outcome"}),
			LayoutDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "trendcloud_layout_duration_seconds",
				Help:    "Time spent laying out one word cloud page",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .016, .025, .05, .1},
			}),
			LayoutFallbacks: promauto.NewCounter(prometheus.CounterOpts{
				Name: "trendcloud_layout_fallbacks_total",
				Help: "Labels that fell back to grid placement",
			}),
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			}, []string{"method", "path", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			}, []string{"method", "path", "status"}),
		}
	})
	return instance
}
