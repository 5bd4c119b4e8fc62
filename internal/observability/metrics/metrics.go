package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "ha_logbook_"

	ResultSuccess = "success"
	ResultError   = "error"
	ResultStale   = "stale"
)

var (
	registerOnce sync.Once

	refreshCycles  *prometheus.CounterVec
	refreshLatency prometheus.Histogram
	fetchLatency   *prometheus.HistogramVec
	fetchErrors    *prometheus.CounterVec
	staleResponses prometheus.Counter
	timelineItems  prometheus.Gauge
	missingEntity  prometheus.Gauge
	configReloads  *prometheus.CounterVec
)

// Init registers the logbook metrics with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		refreshCycles = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "refresh_cycles_total",
				Help: "Total refresh cycles by result",
			},
			[]string{"result"},
		)
		refreshLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "refresh_latency_seconds",
				Help:    "Refresh cycle latency in seconds, fetch and pipeline",
				Buckets: prometheus.DefBuckets,
			},
		)
		fetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "fetch_latency_seconds",
				Help:    "Source fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)
		fetchErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fetch_errors_total",
				Help: "Total source fetch errors",
			},
			[]string{"source"},
		)
		staleResponses = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "stale_responses_total",
				Help: "Refresh results discarded because a newer one was already applied",
			},
		)
		timelineItems = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "timeline_items",
				Help: "Items in the last rendered timeline",
			},
		)
		missingEntity = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "missing_entities",
				Help: "Configured entities that do not exist in Home Assistant",
			},
		)
		configReloads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "config_reloads_total",
				Help: "Card configuration reloads by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			refreshCycles,
			refreshLatency,
			fetchLatency,
			fetchErrors,
			staleResponses,
			timelineItems,
			missingEntity,
			configReloads,
		)
	})
}

// ObserveRefresh records a refresh cycle result and duration.
func ObserveRefresh(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if refreshCycles != nil {
		refreshCycles.WithLabelValues(result).Inc()
	}
	if refreshLatency != nil && result != ResultStale {
		refreshLatency.Observe(duration.Seconds())
	}
}

// ObserveFetch records one source fetch.
func ObserveFetch(source string, duration time.Duration, err error) {
	if source == "" {
		source = "unknown"
	}
	if fetchLatency != nil {
		fetchLatency.WithLabelValues(source).Observe(duration.Seconds())
	}
	if err != nil && fetchErrors != nil {
		fetchErrors.WithLabelValues(source).Inc()
	}
}

// IncStaleResponse counts a discarded out-of-order result.
func IncStaleResponse() {
	if staleResponses != nil {
		staleResponses.Inc()
	}
}

// SetTimeline records the size of the applied timeline.
func SetTimeline(items, missing int) {
	if timelineItems != nil {
		timelineItems.Set(float64(items))
	}
	if missingEntity != nil {
		missingEntity.Set(float64(missing))
	}
}

// IncConfigReload counts a hot reload attempt.
func IncConfigReload(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if configReloads != nil {
		configReloads.WithLabelValues(result).Inc()
	}
}
