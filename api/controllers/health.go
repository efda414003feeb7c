package controllers

import (
	"net/http"

	"github.com/nayyarmobile/shopdesk-backend/api/responses"
	"github.com/nayyarmobile/shopdesk-backend/pkg/config"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
)

const envHeader = "X-ShopDesk-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
