// ===============================
// FILE: internal/handlers/api/v1/books/books_controller.go
// ===============================

package books

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

// BookController handles the book catalog endpoints
type BookController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewBookController creates a new book controller
func NewBookController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *BookController {
	return &BookController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ListPublicBooks handles GET /api/v1/books. Supports `search` over title
// and author plus `sort_by` (date, views or rating).
func (c *BookController) ListPublicBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := services.ListBooksRequest{
		Search:     r.URL.Query().Get("search"),
		SortBy:     r.URL.Query().Get("sort_by"),
		Pagination: response.ParsePagination(r),
	}
	if req.SortBy == "" {
		req.SortBy = models.BookSortDate
	}

	page, err := c.serviceCollection.Book.ListPublicBooks(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	response.WritePaginated[*models.Book](c.responseBuilder, ctx, w, page)
}

// CreateBook handles POST /api/v1/books
func (c *BookController) CreateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	var req services.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}
	req.UserID = authCtx.UserID

	book, err := c.serviceCollection.Book.CreateBook(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}

	c.logger.Info("Book created via API",
		zap.Int64("book_id", book.ID),
		zap.Int64("user_id", authCtx.UserID),
	)
	c.responseBuilder.WriteCreated(ctx, w, book)
}

// ListMyBooks handles GET /api/v1/my-books. Private books are included.
func (c *BookController) ListMyBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	params := response.ParsePagination(r)
	page, err := c.serviceCollection.Book.ListMyBooks(ctx, authCtx.UserID, params)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	response.WritePaginated[*models.Book](c.responseBuilder, ctx, w, page)
}

// GetBook handles GET /api/v1/my-books/{id}. Reading a book bumps its view
// counter; private books are visible to their owner only.
func (c *BookController) GetBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)

	bookID, err := extractBookID(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid book ID")
		return
	}

	var viewerID *int64
	if authCtx != nil {
		viewerID = &authCtx.UserID
	}

	book, svcErr := c.serviceCollection.Book.GetBook(ctx, bookID, viewerID)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, book)
}

// UpdateBook handles PATCH /api/v1/my-books/{id}
func (c *BookController) UpdateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	bookID, err := extractBookID(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid book ID")
		return
	}

	var req services.UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}
	req.BookID = bookID
	req.UserID = authCtx.UserID

	book, svcErr := c.serviceCollection.Book.UpdateBook(ctx, &req)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, book)
}

// DeleteBook handles DELETE /api/v1/my-books/{id}
func (c *BookController) DeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	bookID, err := extractBookID(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid book ID")
		return
	}

	if svcErr := c.serviceCollection.Book.DeleteBook(ctx, bookID, authCtx.UserID); svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}

	c.logger.Info("Book deleted via API",
		zap.Int64("book_id", bookID),
		zap.Int64("user_id", authCtx.UserID),
	)
	c.responseBuilder.WriteNoContent(ctx, w)
}

// extractBookID parses the {id} segment of /api/v1/my-books/{id}
func extractBookID(path string) (int64, error) {
	trimmed := strings.TrimPrefix(path, "/api/v1/my-books/")
	trimmed = strings.Trim(trimmed, "/")
	return strconv.ParseInt(trimmed, 10, 64)
}
