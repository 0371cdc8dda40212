package web

import (
	"net/http"

	"github.com/google/uuid"

	"unimart/pkg/requestcontext"
)

// requestID stamps every inbound request with a correlation ID, honoring one
// the caller already carries. The transport layer propagates it to backend
// calls via the context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
