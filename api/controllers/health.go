package controllers

import (
	"net/http"

	"github.com/angelmondragon/olist-etl/api/responses"
	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/pkg/config"
	"github.com/angelmondragon/olist-etl/pkg/db"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/logger"
)

const envHeader = "X-Olist-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once results are published and the database,
// when one is configured, answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, results analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set(envHeader, cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not reachable"))
				return
			}
		}
		if results == nil || !results.Ready() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "pipeline results not ready"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
