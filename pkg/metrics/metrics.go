package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives evaluation events of the collection service.
type Recorder interface {
	ObserveEvaluation(source string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncRejectedRules()
	SetCollectionSize(collection string, characters, stages int)
}

type Collectors struct {
	registry           *prometheus.Registry
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	rejectedRules      prometheus.Counter
	collectionSize     *prometheus.GaugeVec
}

// NewCollectors registers every collector on a dedicated registry.
func NewCollectors() *Collectors {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collectors{
		registry: registry,

		evaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mugenvault_evaluations_total",
			Help: "Total number of smart collection evaluations",
		}, []string{"source"}),

		evaluationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mugenvault_evaluation_duration_seconds",
			Help:    "Duration of smart collection evaluations",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"source"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "mugenvault_cache_hits_total",
			Help: "Total number of evaluation results served from cache",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "mugenvault_cache_misses_total",
			Help: "Total number of evaluations not found in cache",
		}),

		rejectedRules: factory.NewCounter(prometheus.CounterOpts{
			Name: "mugenvault_rejected_rules_total",
			Help: "Total number of rules rejected by validation",
		}),

		collectionSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mugenvault_collection_items",
			Help: "Number of items matched by a smart collection at its last refresh",
		}, []string{"collection", "kind"}),
	}
}

func (c *Collectors) ObserveEvaluation(source string, duration time.Duration) {
	c.evaluationsTotal.WithLabelValues(source).Inc()
	c.evaluationDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (c *Collectors) IncCacheHits() {
	c.cacheHits.Inc()
}

func (c *Collectors) IncCacheMisses() {
	c.cacheMisses.Inc()
}

func (c *Collectors) IncRejectedRules() {
	c.rejectedRules.Inc()
}

func (c *Collectors) SetCollectionSize(collection string, characters, stages int) {
	c.collectionSize.WithLabelValues(collection, "character").Set(float64(characters))
	c.collectionSize.WithLabelValues(collection, "stage").Set(float64(stages))
}

// Handler exposes the registry in the prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Noop discards every event.
type Noop struct{}

func (Noop) ObserveEvaluation(string, time.Duration) {}
func (Noop) IncCacheHits()                           {}
func (Noop) IncCacheMisses()                         {}
func (Noop) IncRejectedRules()                       {}
func (Noop) SetCollectionSize(string, int, int)      {}
