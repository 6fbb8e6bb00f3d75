package routes

import (
	"net/http"

	"github.com/zatekoja/srq20-api/internal/api/handlers"
	"github.com/zatekoja/srq20-api/internal/api/middleware"
	"github.com/zatekoja/srq20-api/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	predictionHandler *handlers.PredictionHandler

	cors        *middleware.CORS
	rateLimiter *middleware.RateLimiter
	metrics     *observability.Metrics
}

// NewRouter creates a new router. rateLimiter and metrics may be nil.
func NewRouter(
	predictionHandler *handlers.PredictionHandler,
	cors *middleware.CORS,
	rateLimiter *middleware.RateLimiter,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		predictionHandler: predictionHandler,
		cors:              cors,
		rateLimiter:       rateLimiter,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	r.mux.HandleFunc("GET /{$}", r.predictionHandler.Root)

	var predict http.Handler = http.HandlerFunc(r.predictionHandler.Predict)
	if r.rateLimiter != nil {
		predict = r.rateLimiter.Middleware(predict)
	}
	r.mux.Handle("POST /predict", predict)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflight never reaches the mux
	if r.cors != nil {
		handler = r.cors.Middleware(handler)
	}

	return handler
}
