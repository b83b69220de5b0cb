package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/httputil"
	"github.com/greenleaf-garden/storefront/pkg/logger"
)

// Identity headers set by the upstream gateway. A signed-in shopper carries
// X-User-ID; a guest carries only X-Session-ID.
const (
	UserIDHeader    = "X-User-ID"
	SessionIDHeader = "X-Session-ID"
)

const maxCartKeyLen = 128

type cartKeyCtx struct{}

// CartKeyFromRequest returns the owner key for the caller: the user id when
// present, otherwise the guest session id, otherwise "".
func CartKeyFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
		return "user:" + id
	}
	if id := strings.TrimSpace(r.Header.Get(SessionIDHeader)); id != "" {
		return "session:" + id
	}
	return ""
}

// RequireCartKey rejects requests without an identity header with 401 and
// stores the resolved key for CartKeyFromContext.
func RequireCartKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := CartKeyFromRequest(r)
		if key == "" || len(key) > maxCartKeyLen {
			httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), nil)
			return
		}

		ctx := context.WithValue(r.Context(), cartKeyCtx{}, key)
		ctx = logger.WithCartKey(ctx, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CartKeyFromContext returns the key stored by RequireCartKey.
func CartKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(cartKeyCtx{}).(string)
	return key
}

// WithCartKey stores key as RequireCartKey would. Used by tests that call
// handlers directly.
func WithCartKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, cartKeyCtx{}, key)
}
