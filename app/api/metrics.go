package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lysyi3m/news-browser/app/curation"
)

var navigations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "news_browser_navigations_total",
	Help: "Date navigations by direction",
}, []string{"direction"})

var curatedItems = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "news_browser_curated_items",
	Help: "Items in the curated selection",
})

var snapshotFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "news_browser_snapshot_fallbacks_total",
	Help: "Documents served from a stored snapshot because the upstream fetch failed",
})

// TrackCuratedItems keeps the curated items gauge in step with store.
func TrackCuratedItems(store *curation.Store) {
	curatedItems.Set(float64(len(store.State().Items)))
	store.Subscribe(func(state curation.State) {
		curatedItems.Set(float64(len(state.Items)))
	})
}
