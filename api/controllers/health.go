package controllers

import (
	"net/http"

	"github.com/rmartinelli/shopcart-backend/api/responses"
	"github.com/rmartinelli/shopcart-backend/pkg/config"
	"github.com/rmartinelli/shopcart-backend/pkg/db"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
	"github.com/rmartinelli/shopcart-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopCart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness once the database and redis respond. A nil
// redis pinger is skipped so the API can run without a cache in dev.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopCart-Env", cfg.App.Env)

		checks := map[string]string{}
		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready"))
				return
			}
			checks["database"] = "ok"
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready"))
				return
			}
			checks["redis"] = "ok"
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
