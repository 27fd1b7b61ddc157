package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kailas-cloud/unidash/internal/metrics"
)

// NewRouter mounts the server routes behind the middleware chain.
// An empty apiKeys list disables authentication.
func NewRouter(s *Server, apiKeys []string) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeRouteNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/pages", func(r gochi.Router) {
		r.Get("/", s.ListPages)
		r.Route("/{page}", func(r gochi.Router) {
			r.Get("/", s.GetPage)
			r.Get("/records", s.ListRecords)
			r.Get("/facets", s.ListFacets)
			r.Post("/refresh", s.RefreshPage)
		})
	})
	return r
}
