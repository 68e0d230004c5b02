// ===============================
// FILE: internal/handlers/api/v1/comments/comments_controller.go
// ===============================

package comments

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"bookhub/internal/middleware"
	"bookhub/internal/response"
	"bookhub/internal/services"

	"go.uber.org/zap"
)

// CommentController handles book comment endpoints
type CommentController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewCommentController creates a new comment controller
func NewCommentController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *CommentController {
	return &CommentController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ListComments handles GET /api/v1/books/{book_id}/comments. Top-level
// comments come newest first with their replies nested oldest first.
func (c *CommentController) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := extractBookIDFromCommentsPath(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid book ID")
		return
	}

	comments, svcErr := c.serviceCollection.Comment.ListComments(ctx, bookID)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, comments)
}

// CreateComment handles POST /api/v1/books/{book_id}/comments. A `parent`
// field in the body turns the comment into a reply.
func (c *CommentController) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	bookID, err := extractBookIDFromCommentsPath(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid book ID")
		return
	}

	var req services.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}
	req.BookID = bookID
	req.UserID = authCtx.UserID

	comment, svcErr := c.serviceCollection.Comment.CreateComment(ctx, &req)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}

	c.logger.Info("Comment created via API",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("book_id", bookID),
		zap.Int64("user_id", authCtx.UserID),
	)
	c.responseBuilder.WriteCreated(ctx, w, comment)
}

// UpdateComment handles PATCH /api/v1/comments/{id}
func (c *CommentController) UpdateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	commentID, err := extractCommentID(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid comment ID")
		return
	}

	var req services.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}
	req.CommentID = commentID
	req.UserID = authCtx.UserID

	comment, svcErr := c.serviceCollection.Comment.UpdateComment(ctx, &req)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, comment)
}

// DeleteComment handles DELETE /api/v1/comments/{id}. Deleting a parent
// removes its direct replies as well.
func (c *CommentController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	commentID, err := extractCommentID(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid comment ID")
		return
	}

	if svcErr := c.serviceCollection.Comment.DeleteComment(ctx, commentID, authCtx.UserID); svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteNoContent(ctx, w)
}

// extractBookIDFromCommentsPath parses /api/v1/books/{book_id}/comments
func extractBookIDFromCommentsPath(path string) (int64, error) {
	trimmed := strings.TrimPrefix(path, "/api/v1/books/")
	trimmed = strings.TrimSuffix(trimmed, "/comments")
	trimmed = strings.Trim(trimmed, "/")
	return strconv.ParseInt(trimmed, 10, 64)
}

// extractCommentID parses /api/v1/comments/{id}
func extractCommentID(path string) (int64, error) {
	trimmed := strings.TrimPrefix(path, "/api/v1/comments/")
	trimmed = strings.Trim(trimmed, "/")
	return strconv.ParseInt(trimmed, 10, 64)
}
