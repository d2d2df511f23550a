package controllers

import (
	"context"
	"net/http"

	"github.com/bloomhaus/petalboard-backend/api/responses"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

// Pinger is anything with a connectivity probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Liveness reports that the process is up.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Readiness reports whether the backing stores are reachable.
func Readiness(db, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
