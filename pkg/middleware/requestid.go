package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/campushire/portal/pkg/contextkeys"
	"github.com/campushire/portal/pkg/observability"
)

// RequestID tags every request with an ID and a request-scoped logger.
// Inbound X-Request-ID headers are honored so IDs survive proxies.
func RequestID(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := contextkeys.WithRequestID(r.Context(), requestID)
			ctx = observability.WithRequestID(ctx, requestID)
			if logger != nil {
				ctx = observability.WithLogger(ctx, logger.WithField("request_id", requestID))
			}

			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
