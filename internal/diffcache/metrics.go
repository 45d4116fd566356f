package diffcache

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("kori.diffcache")
	meter  = otel.Meter("kori.diffcache")
)

var (
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheEvictions metric.Int64Counter
	computeSeconds metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once. With no MeterProvider installed they are
// no-ops.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		cacheHits, err = meter.Int64Counter(
			"kori_diffcache_hits_total",
			metric.WithDescription("Diff requests answered from the cache"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheMisses, err = meter.Int64Counter(
			"kori_diffcache_misses_total",
			metric.WithDescription("Diff requests that had to be computed or joined"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheEvictions, err = meter.Int64Counter(
			"kori_diffcache_evictions_total",
			metric.WithDescription("Entries dropped to respect MaxEntries"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		computeSeconds, err = meter.Float64Histogram(
			"kori_diffcache_compute_seconds",
			metric.WithDescription("Time spent computing a line diff"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}
