package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/srq20-api/internal/api/middleware"
)

func TestLoggingMiddleware_RequestID(t *testing.T) {
	handler := middleware.LoggingMiddleware(okHandler())

	t.Run("generated when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		_, err := uuid.Parse(w.Header().Get(middleware.RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("propagated when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-123")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
	})
}

func TestLoggingMiddleware_ExposesMatchedPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /predict", okHandler())

	var seen string
	outer := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			seen = r.Pattern
		})
	}
	handler := outer(middleware.LoggingMiddleware(mux))

	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "POST /predict", seen)
}

func TestObservabilityMiddleware_NilMetrics(t *testing.T) {
	handler := middleware.ObservabilityMiddleware(nil)(middleware.LoggingMiddleware(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	assert.NotPanics(t, func() { handler.ServeHTTP(w, req) })
	assert.Equal(t, http.StatusOK, w.Code)
}
