package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HistoryPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callrewind_history_pages_fetched_total",
		Help: "History pages successfully fetched from the provider.",
	})

	ReviewsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "callrewind_reviews_built_total",
		Help: "Year reviews built, labeled by outcome.",
	}, []string{"outcome"})

	SharesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callrewind_shares_created_total",
		Help: "Share links created.",
	})
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
