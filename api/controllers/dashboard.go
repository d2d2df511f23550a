package controllers

import (
	"net/http"

	"github.com/bloomhaus/petalboard-backend/api/responses"
	"github.com/bloomhaus/petalboard-backend/internal/dashboard"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

// DashboardStats recomputes the summary counters, the 14-day order volume
// series, and the slot distribution from the current order set.
func DashboardStats(svc *dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
