// ===============================
// FILE: internal/handlers/api/v1/auth/auth_controller.go
// ===============================

package auth

import (
	"encoding/json"
	"net"
	"net/http"

	"bookhub/internal/middleware"
	"bookhub/internal/response"
	"bookhub/internal/services"

	"go.uber.org/zap"
)

// AuthController handles registration, login and the token lifecycle
type AuthController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewAuthController creates a new auth controller
func NewAuthController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AuthController {
	return &AuthController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// Register handles POST /api/v1/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}

	user, err := c.serviceCollection.Auth.Register(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}

	c.logger.Info("User registered via API",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	c.responseBuilder.WriteCreated(ctx, w, user)
}

// Login handles POST /api/v1/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}

	if userAgent := r.UserAgent(); userAgent != "" {
		req.UserAgent = &userAgent
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		req.IPAddress = &host
	}

	auth, err := c.serviceCollection.Auth.Login(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}

	c.logger.Info("User logged in via API", zap.Int64("user_id", auth.User.ID))
	c.responseBuilder.WriteSuccess(ctx, w, auth)
}

// Logout handles POST /api/v1/auth/logout
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	if err := c.serviceCollection.Auth.Logout(ctx, authCtx.Token); err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteNoContent(ctx, w)
}

// RefreshToken handles POST /api/v1/auth/refresh
func (c *AuthController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		c.responseBuilder.WriteValidationError(ctx, w, "Refresh token is required")
		return
	}

	auth, err := c.serviceCollection.Auth.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, auth)
}

// VerifyToken handles GET /api/v1/auth/verify. It reports the validity of
// the presented access token along with its decoded claims.
func (c *AuthController) VerifyToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := extractBearerToken(r)
	if token == "" {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	claims, err := c.serviceCollection.Auth.VerifyToken(ctx, token)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, claims)
}

// EmailAction handles POST /api/v1/auth/email-action. It starts an email
// verification or password reset flow. Unknown addresses are reported as
// success so the endpoint cannot be used to enumerate accounts.
func (c *AuthController) EmailAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.EmailActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}

	if err := c.serviceCollection.Auth.RequestEmailAction(ctx, &req); err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, map[string]string{
		"message": "If the address exists, an email has been sent",
	})
}

// ConfirmEmail handles POST /api/v1/auth/confirm-email
func (c *AuthController) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		c.responseBuilder.WriteValidationError(ctx, w, "Verification token is required")
		return
	}

	if err := c.serviceCollection.Auth.ConfirmEmail(ctx, req.Token); err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, map[string]string{"message": "Email verified"})
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}

	if err := c.serviceCollection.Auth.ResetPassword(ctx, &req); err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, map[string]string{"message": "Password updated"})
}

func extractBearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
