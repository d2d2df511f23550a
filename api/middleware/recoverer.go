package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/bloomhaus/petalboard-backend/api/responses"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

// Recoverer converts downstream panics into a 500 response instead of
// tearing down the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					if logg != nil {
						ctx := logg.WithField(r.Context(), "stack", string(debug.Stack()))
						logg.Error(ctx, "request.panic", err)
					}
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
