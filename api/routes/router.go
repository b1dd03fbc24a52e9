package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/olist-etl/api/controllers"
	"github.com/angelmondragon/olist-etl/api/middleware"
	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/pkg/config"
	"github.com/angelmondragon/olist-etl/pkg/db"
	"github.com/angelmondragon/olist-etl/pkg/logger"
)

// NewRouter wires the read-only API. dbP may be nil when the service runs
// without a database; gatherer may be nil to disable /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	resultsService analytics.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, resultsService))
	})

	r.Route("/api/v1/results", func(r chi.Router) {
		r.Get("/", controllers.ListResults(resultsService, logg))
		r.Get("/{name}", controllers.GetResult(resultsService, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
