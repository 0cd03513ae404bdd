package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "car_matching_queries_total",
			Help: "Total number of preference queries by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "car_matching_query_duration_seconds",
			Help:    "Duration of preference query evaluation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"endpoint"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "car_matching_cache_lookups_total",
			Help: "Query result cache lookups by result",
		},
		[]string{"result"},
	)
)
