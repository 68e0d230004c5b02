// ===============================
// FILE: internal/handlers/api/v1/users/users_controller.go
// ===============================

package users

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"bookhub/internal/middleware"
	"bookhub/internal/models"
	"bookhub/internal/response"
	"bookhub/internal/services"

	"go.uber.org/zap"
)

// UserController handles profile and account endpoints
type UserController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewUserController creates a new user controller
func NewUserController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UserController {
	return &UserController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// GetMe handles GET /api/v1/users/me
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	user, err := c.serviceCollection.User.GetUserByID(ctx, authCtx.UserID)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, user)
}

// UpdateMe handles PATCH /api/v1/users/me
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}
	req.UserID = authCtx.UserID

	user, err := c.serviceCollection.User.UpdateProfile(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, user)
}

// DeleteMe handles DELETE /api/v1/users/me
func (c *UserController) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	if err := c.serviceCollection.User.DeleteAccount(ctx, authCtx.UserID); err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}

	c.logger.Info("Account deleted via API", zap.Int64("user_id", authCtx.UserID))
	c.responseBuilder.WriteNoContent(ctx, w)
}

// GetUser handles GET /api/v1/users/{id}
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := extractUserID(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid user ID")
		return
	}

	user, svcErr := c.serviceCollection.User.GetUserByID(ctx, userID)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, user)
}

// GetUserBooks handles GET /api/v1/users/{id}/books. Only the user's
// public books are returned.
func (c *UserController) GetUserBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := extractUserID(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid user ID")
		return
	}

	params := response.ParsePagination(r)
	page, svcErr := c.serviceCollection.Book.ListUserBooks(ctx, userID, params)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	response.WritePaginated[*models.Book](c.responseBuilder, ctx, w, page)
}

// extractUserID parses the {id} segment of /api/v1/users/{id}[/books]
func extractUserID(path string) (int64, error) {
	trimmed := strings.TrimPrefix(path, "/api/v1/users/")
	trimmed = strings.TrimSuffix(trimmed, "/books")
	trimmed = strings.Trim(trimmed, "/")
	return strconv.ParseInt(trimmed, 10, 64)
}
