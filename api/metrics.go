// Package api - request metrics
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundalloc_api_requests_total",
		Help: "API requests by endpoint and status code.",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fundalloc_api_request_duration_seconds",
		Help:    "API request processing time by endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
