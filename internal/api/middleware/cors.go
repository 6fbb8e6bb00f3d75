package middleware

import (
	"net/http"
	"strconv"
)

const (
	corsAllowMethods = "DELETE, GET, HEAD, OPTIONS, PATCH, POST, PUT"
	corsMaxAge       = 600
)

// CORS applies a cross-origin policy for a fixed set of origins with
// credentials allowed. Any method and any request header is permitted.
type CORS struct {
	allowed map[string]struct{}
}

// NewCORS creates the CORS policy for the given origins
func NewCORS(allowedOrigins []string) *CORS {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	return &CORS{allowed: allowed}
}

// isAllowedOrigin checks if an origin is in the allowed list
func (c *CORS) isAllowedOrigin(origin string) bool {
	_, ok := c.allowed[origin]
	return ok
}

// Middleware adds CORS headers to HTTP responses and answers preflight requests
func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			c.preflight(w, r, origin)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Credentials", "true")
		if c.isAllowedOrigin(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}

		next.ServeHTTP(w, r)
	})
}

func (c *CORS) preflight(w http.ResponseWriter, r *http.Request, origin string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Add("Vary", "Origin")
	if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
		h.Set("Access-Control-Allow-Headers", requested)
	}
	h.Set("Content-Type", "text/plain; charset=utf-8")

	if !c.isAllowedOrigin(origin) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Disallowed CORS origin"))
		return
	}

	h.Set("Access-Control-Allow-Origin", origin)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
