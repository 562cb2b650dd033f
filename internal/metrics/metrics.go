package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for collection runs and the content
// store.
type Collector struct {
	registry       *prometheus.Registry
	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	itemsPersisted prometheus.Counter
	itemErrors     prometheus.Counter
	storePuts      *prometheus.CounterVec
}

// NewCollector constructs a collector with default counters/histograms.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackerbrief",
		Subsystem: "collector",
		Name:      "runs_total",
		Help:      "Collection runs by outcome.",
	}, []string{"outcome"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hackerbrief",
		Subsystem: "collector",
		Name:      "run_duration_seconds",
		Help:      "Duration of collection runs.",
		Buckets:   prometheus.DefBuckets,
	})

	itemsPersisted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hackerbrief",
		Subsystem: "collector",
		Name:      "items_persisted_total",
		Help:      "Items persisted across all runs.",
	})

	itemErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hackerbrief",
		Subsystem: "collector",
		Name:      "item_errors_total",
		Help:      "Per-item failures across all runs.",
	})

	storePuts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackerbrief",
		Subsystem: "contentstore",
		Name:      "puts_total",
		Help:      "Content store puts by content kind.",
	}, []string{"kind"})

	for _, c := range []prometheus.Collector{runsTotal, runDuration, itemsPersisted, itemErrors, storePuts} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:       registry,
		runsTotal:      runsTotal,
		runDuration:    runDuration,
		itemsPersisted: itemsPersisted,
		itemErrors:     itemErrors,
		storePuts:      storePuts,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRun records one finished run.
func (c *Collector) ObserveRun(outcome string, d time.Duration, persisted, errCount int) {
	c.runsTotal.WithLabelValues(outcome).Inc()
	c.runDuration.Observe(d.Seconds())
	c.itemsPersisted.Add(float64(persisted))
	c.itemErrors.Add(float64(errCount))
}

// ObservePut records one content store write.
func (c *Collector) ObservePut(kind string) {
	c.storePuts.WithLabelValues(kind).Inc()
}
