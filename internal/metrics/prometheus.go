package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nlq_query_duration_seconds",
			Help:    "Query processing duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"pattern"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlq_query_total",
			Help: "Total number of queries processed",
		},
		[]string{"status"},
	)

	QueryLanguage = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlq_query_language_total",
			Help: "Queries by detected language",
		},
		[]string{"language"},
	)

	QueryComplexity = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlq_query_complexity_total",
			Help: "Queries by computed complexity level",
		},
		[]string{"level"},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlq_confidence_score",
			Help:    "Classification confidence of built structures",
			Buckets: []float64{0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1.0},
		},
	)

	UnknownWordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nlq_unknown_words_total",
			Help: "Unclassifiable words recorded from failed queries",
		},
	)

	UserSatisfaction = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nlq_satisfaction_score",
			Help: "User feedback satisfaction score",
		},
		[]string{"helpful"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlq_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlq_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	DatasetsLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nlq_datasets_loaded_total",
			Help: "Total dataset files ingested",
		},
	)

	DatasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nlq_dataset_rows",
			Help: "Row count of the most recently loaded dataset",
		},
	)

	DictionaryEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nlq_dictionary_entries",
			Help: "Entries loaded per dictionary category",
		},
		[]string{"category"},
	)
)

func Init() {
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(QueryLanguage)
	prometheus.MustRegister(QueryComplexity)
	prometheus.MustRegister(ConfidenceScore)
	prometheus.MustRegister(UnknownWordsTotal)
	prometheus.MustRegister(UserSatisfaction)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(DatasetsLoaded)
	prometheus.MustRegister(DatasetRows)
	prometheus.MustRegister(DictionaryEntries)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
