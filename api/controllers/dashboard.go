package controllers

import (
	"net/http"
	"time"

	"github.com/nayyarmobile/shopdesk-backend/api/responses"
	"github.com/nayyarmobile/shopdesk-backend/api/validators"
	"github.com/nayyarmobile/shopdesk-backend/internal/reporting"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
)

// DashboardSummary returns the day-at-a-glance numbers for the back office.
func DashboardSummary(svc reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.ParseQueryDate(r, "date", time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.DailySummary(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
