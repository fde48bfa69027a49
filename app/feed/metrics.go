package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_browser_fetch_requests_total",
		Help: "The total number of outgoing fetches by result",
	}, []string{"result"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "news_browser_fetch_duration_seconds",
		Help:    "Duration of outgoing fetches",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	filteredItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_browser_source_items_filtered_total",
		Help: "Source items dropped by include/exclude filters",
	}, []string{"source"})
)
