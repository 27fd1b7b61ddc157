package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/unidash/internal/domain"
	"github.com/kailas-cloud/unidash/internal/domain/listing/filter"
	logpkg "github.com/kailas-cloud/unidash/internal/logger"
	healthuc "github.com/kailas-cloud/unidash/internal/usecase/health"
	listinguc "github.com/kailas-cloud/unidash/internal/usecase/listing"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the listing pages over HTTP.
type Server struct {
	listing       *listinguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(listing *listinguc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		listing: listing,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		clientErrorHandler(errInvalidParameter, ErrorCodeBadRequest),
		clientErrorHandler(domain.ErrInvalidFilterValue, ErrorCodeInvalidFilterValue),
		clientErrorHandler(domain.ErrInvalidSortKey, ErrorCodeInvalidSortKey),
		// a fetch of a missing source wraps ErrNotFound too; it is still a fetch failure
		sentinelHandler(domain.ErrFetch, http.StatusBadGateway, ErrorCodeFetchFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodePageNotFound),
	}
	return s
}

// ListPages handles GET /pages.
func (s *Server) ListPages(w http.ResponseWriter, _ *http.Request) {
	defs := s.listing.Definitions()
	items := make([]PageResponse, len(defs))
	for i, d := range defs {
		items[i] = pageToResponse(d)
	}
	writeJSON(w, http.StatusOK, PageListResponse{Items: items})
}

// GetPage handles GET /pages/{page}.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	def, err := s.listing.Definition(gochi.URLParam(r, "page"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(def))
}

// ListRecords handles GET /pages/{page}/records.
// A failed fetch still answers 200 with an empty page and the error field set.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	p, err := s.listing.Open(r.Context(), gochi.URLParam(r, "page"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := applyQuery(p, r.URL.Query()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	v := p.View()
	if v.Err != nil {
		logpkg.FromContext(r.Context()).Warn("records served without a collection",
			zap.String("page", p.Definition().Name()), zap.Error(v.Err))
	}
	writeJSON(w, http.StatusOK, viewToResponse(v))
}

// ListFacets handles GET /pages/{page}/facets.
func (s *Server) ListFacets(w http.ResponseWriter, r *http.Request) {
	groups, err := s.listing.Facets(r.Context(), gochi.URLParam(r, "page"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FacetListResponse{Items: facetsToResponse(groups, filter.State{})})
}

// RefreshPage handles POST /pages/{page}/refresh.
func (s *Server) RefreshPage(w http.ResponseWriter, r *http.Request) {
	if err := s.listing.Refresh(r.Context(), gochi.URLParam(r, "page")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Missing: report.Missing,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrFetch,
		domain.ErrNotFound,
		domain.ErrInvalidFilterValue,
		domain.ErrInvalidSortKey,
		domain.ErrInvalidSchema,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// clientErrorHandler answers 400 with the full error text. Used for errors
// caused by request input, whose messages name the offending parameter.
func clientErrorHandler(sentinel error, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, _ string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusBadRequest, code, err.Error())
		return true
	}
}

// handleDomainError logs through the request-scoped logger so entries carry the request id.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
