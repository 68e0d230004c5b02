package middleware

import "net/http"

// CORSConfig controls the cross-origin headers
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods string
	AllowedHeaders string
}

// DefaultCORSConfig allows any origin, which suits local development
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: "GET, POST, PATCH, PUT, DELETE, OPTIONS",
		AllowedHeaders: "Content-Type, Authorization, X-Request-ID",
	}
}

// CORS sets the cross-origin headers and short-circuits preflight requests
func CORS(config *CORSConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := resolveOrigin(config.AllowedOrigins, r.Header.Get("Origin"))
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", config.AllowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", config.AllowedHeaders)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveOrigin(allowed []string, requestOrigin string) string {
	for _, origin := range allowed {
		if origin == "*" {
			return "*"
		}
		if origin == requestOrigin {
			return origin
		}
	}
	return ""
}
