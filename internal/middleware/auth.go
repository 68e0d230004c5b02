// Package middleware holds the HTTP middleware stack.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bookhub/internal/cache"
	"bookhub/internal/response"
	"bookhub/internal/services"

	"go.uber.org/zap"
)

// AuthContext is the authenticated identity attached to a request
type AuthContext struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

type contextKey string

const authContextKey contextKey = "auth_context"

// GetAuthContext returns the AuthContext stored by the middleware, or nil
// for unauthenticated requests.
func GetAuthContext(ctx context.Context) *AuthContext {
	if authCtx, ok := ctx.Value(authContextKey).(*AuthContext); ok {
		return authCtx
	}
	return nil
}

// AuthConfig holds middleware tunables
type AuthConfig struct {
	ClaimsCacheTTL time.Duration
	CookieName     string
}

// DefaultAuthConfig returns sensible defaults
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		ClaimsCacheTTL: time.Minute,
		CookieName:     "session_token",
	}
}

// AuthMiddleware authenticates requests from a bearer token or session
// cookie.
type AuthMiddleware struct {
	authService     services.AuthService
	cache           cache.Cache
	responseBuilder *response.Builder
	config          *AuthConfig
	logger          *zap.Logger
}

// NewAuthMiddleware creates the auth middleware
func NewAuthMiddleware(
	authService services.AuthService,
	cacheInstance cache.Cache,
	responseBuilder *response.Builder,
	config *AuthConfig,
	logger *zap.Logger,
) *AuthMiddleware {
	if config == nil {
		config = DefaultAuthConfig()
	}
	return &AuthMiddleware{
		authService:     authService,
		cache:           cacheInstance,
		responseBuilder: responseBuilder,
		config:          config,
		logger:          logger,
	}
}

// RequireAuth rejects requests without a valid token
func (m *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, err := m.authenticate(r)
			if err != nil {
				m.responseBuilder.WriteError(r.Context(), w, err)
				return
			}

			ctx := context.WithValue(r.Context(), authContextKey, authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an AuthContext when a valid token is present and
// passes the request through either way.
func (m *AuthMiddleware) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authCtx, err := m.authenticate(r); err == nil {
				ctx := context.WithValue(r.Context(), authContextKey, authCtx)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) authenticate(r *http.Request) (*AuthContext, error) {
	token := m.extractToken(r)
	if token == "" {
		return nil, services.NewUnauthorizedError("Authentication required")
	}

	cacheKey := services.ClaimsCacheKey(token)
	if cached, ok := m.cache.Get(r.Context(), cacheKey); ok {
		if authCtx, ok := cached.(*AuthContext); ok && time.Now().Before(authCtx.ExpiresAt) {
			return authCtx, nil
		}
	}

	claims, err := m.authService.VerifyToken(r.Context(), token)
	if err != nil {
		return nil, err
	}

	authCtx := &AuthContext{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Email:     claims.Email,
		SessionID: claims.SessionID,
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
	}

	if err := m.cache.Set(r.Context(), cacheKey, authCtx, m.config.ClaimsCacheTTL); err != nil {
		m.logger.Warn("Failed to cache auth claims", zap.Error(err))
	}
	return authCtx, nil
}

// extractToken reads the bearer token or falls back to the session cookie
func (m *AuthMiddleware) extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	if cookie, err := r.Cookie(m.config.CookieName); err == nil {
		return cookie.Value
	}
	return ""
}
