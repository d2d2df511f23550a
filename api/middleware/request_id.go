package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

type requestIDKey struct{}

// HeaderRequestID is echoed back on every response so callers can correlate
// logs with requests.
const HeaderRequestID = "X-Request-Id"

// RequestID assigns each request an id, honoring one supplied by the caller.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}

			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the id assigned by RequestID, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}
