// Package metrics registers the Prometheus collectors of the service and
// exposes them for scraping.
package metrics

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SnapshotsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visits_snapshots_ingested_total",
		Help: "Snapshots reconciled and persisted",
	})
	SnapshotsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visits_snapshots_rejected_total",
		Help: "Snapshots rejected by validation",
	})
	VisitChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visits_changes_total",
		Help: "Visit changes by kind (split, extended, created)",
	}, []string{"kind"})
	StoreErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visits_store_errors_total",
		Help: "Visit store failures by operation",
	}, []string{"op"})
	IngestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "visits_ingest_duration_seconds",
		Help:    "Lock-load-reconcile-persist duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(SnapshotsIngested)
	prometheus.MustRegister(SnapshotsRejected)
	prometheus.MustRegister(VisitChanges)
	prometheus.MustRegister(StoreErrors)
	prometheus.MustRegister(IngestDuration)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler { return promhttp.Handler() }

// Register mounts GET /metrics on the router.
func Register(app fiber.Router) {
	app.Get("/metrics", adaptor.HTTPHandler(Handler()))
}
