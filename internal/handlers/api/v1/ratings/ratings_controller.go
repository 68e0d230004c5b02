// ===============================
// FILE: internal/handlers/api/v1/ratings/ratings_controller.go
// ===============================

package ratings

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

// RatingController handles book rating endpoints
type RatingController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewRatingController creates a new rating controller
func NewRatingController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *RatingController {
	return &RatingController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// RateBook handles POST /api/v1/books/{book_id}/review. Rating a book the
// caller already rated replaces the previous score.
func (c *RatingController) RateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	bookID, err := extractBookIDFromReviewPath(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid book ID")
		return
	}

	var req services.RateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}
	req.BookID = bookID
	req.UserID = authCtx.UserID

	rating, svcErr := c.serviceCollection.Rating.RateBook(ctx, &req)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, rating)
}

// RemoveRating handles DELETE /api/v1/books/{book_id}/review
func (c *RatingController) RemoveRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	bookID, err := extractBookIDFromReviewPath(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid book ID")
		return
	}

	if svcErr := c.serviceCollection.Rating.RemoveRating(ctx, authCtx.UserID, bookID); svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteNoContent(ctx, w)
}

// GetSummary handles GET /api/v1/books/{book_id}/review. Returns the
// rating count, mean and per-score buckets.
func (c *RatingController) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := extractBookIDFromReviewPath(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid book ID")
		return
	}

	summary, svcErr := c.serviceCollection.Rating.GetSummary(ctx, bookID)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, summary)
}

// extractBookIDFromReviewPath parses /api/v1/books/{book_id}/review
func extractBookIDFromReviewPath(path string) (int64, error) {
	trimmed := strings.TrimPrefix(path, "/api/v1/books/")
	trimmed = strings.TrimSuffix(trimmed, "/review")
	trimmed = strings.Trim(trimmed, "/")
	return strconv.ParseInt(trimmed, 10, 64)
}
