// internal/server/middleware.go
package server

import (
	"net/http"
	"strconv"
	"time"

	"lending-ops/internal/common/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// instrument logs every request and feeds the HTTP metric vectors, labeled
// by the chi route pattern rather than the raw path so IDs don't explode
// the label space.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		s.log.Info("request handled", map[string]interface{}{
			"method":    r.Method,
			"route":     route,
			"status":    ww.Status(),
			"elapsedMs": elapsed.Milliseconds(),
			"requestId": middleware.GetReqID(r.Context()),
		})
	})
}
