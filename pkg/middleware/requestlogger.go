package middleware

import (
	"log/slog"
	"net/http"

	"github.com/greenleaf-garden/storefront/pkg/logger"
)

// RequestLogger stores a request-scoped logger carrying correlation_id,
// cart_key, trace_id and span_id. Mount it after RequestLogging and Tracing so
// those values are already in the context.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if key := CartKeyFromRequest(r); key != "" && logger.CartKeyFromContext(ctx) == "" {
				ctx = logger.WithCartKey(ctx, key)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
