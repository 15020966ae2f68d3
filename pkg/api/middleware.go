package api

import (
	"net/http"
	"time"

	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/storyweaver/pkg/observability"
)

// logRequests logs one line per request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)

		ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		s.logger.Info("request",
			"id", chimid.GetReqID(ctx),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", dur)
	})
}
