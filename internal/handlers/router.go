package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jwaldner/breakingbad/internal/metrics"
	"github.com/jwaldner/breakingbad/internal/models"
)

type RouterOptions struct {
	CORSOrigin string

	// Metrics is served at MetricsPath when both are set.
	Metrics     *metrics.Metrics
	MetricsPath string
}

// NewRouter wires the API routes. Middleware order: request ID, access log,
// panic recovery, CORS.
func NewRouter(h *OptionsHandler, opts RouterOptions) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, accessMiddleware(opts.Metrics), recoveryMiddleware, corsMiddleware(opts.CORSOrigin))
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(notFound)

	// Registered on the root router: a subrouter reports a method mismatch as 404.
	r.HandleFunc("/api/calculate", h.CalculateHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/heatmap", h.HeatMapHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/recommendations", h.RecommendationsHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/quote/{symbol}", h.QuoteHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/rate", h.RateHandler).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)
	if opts.Metrics != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, opts.Metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{
		Error:   "method_not_allowed",
		Message: r.Method + " is not allowed on " + r.URL.Path,
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "no route for " + r.URL.Path,
	})
}
