package services

import (
	"context"

	"bookhub/internal/models"
	"bookhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// bookService implements BookService
type bookService struct {
	bookRepo  repositories.BookRepository
	userRepo  repositories.UserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookService creates a new book service
func NewBookService(
	bookRepo repositories.BookRepository,
	userRepo repositories.UserRepository,
	logger *zap.Logger,
) BookService {
	return &bookService{
		bookRepo:  bookRepo,
		userRepo:  userRepo,
		validator: validator.New(),
		logger:    logger,
	}
}

// CreateBook uploads a new book owned by the caller
func (s *bookService) CreateBook(ctx context.Context, req *CreateBookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid book data", err)
	}

	book := &models.Book{
		UserID:      req.UserID,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		FileURL:     req.FileURL,
		IsPrivate:   req.IsPrivate,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		s.logger.Error("Failed to create book", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("Failed to create book")
	}
	return book, nil
}

// GetBook retrieves a book and counts the view. Every successful retrieve,
// the owner's included, bumps view_count; the increment and the returned
// row come from one statement.
func (s *bookService) GetBook(ctx context.Context, bookID int64, viewerID *int64) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		s.logger.Error("Failed to load book", zap.Error(err), zap.Int64("book_id", bookID))
		return nil, NewInternalError("Failed to load book")
	}
	if book == nil {
		return nil, NewNotFoundError("Book not found")
	}
	if book.IsPrivate && (viewerID == nil || !book.IsOwnedBy(*viewerID)) {
		return nil, NewNotFoundError("Book not found")
	}

	viewed, err := s.bookRepo.RetrieveAndIncrementViews(ctx, bookID)
	if err != nil {
		s.logger.Error("Failed to count book view", zap.Error(err), zap.Int64("book_id", bookID))
		return nil, NewInternalError("Failed to load book")
	}
	if viewed == nil {
		return nil, NewNotFoundError("Book not found")
	}
	return viewed, nil
}

// UpdateBook applies a partial update; only the owner may update, and only
// the supplied fields change.
func (s *bookService) UpdateBook(ctx context.Context, req *UpdateBookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid book data", err)
	}

	book, err := s.bookRepo.GetByID(ctx, req.BookID)
	if err != nil {
		s.logger.Error("Failed to load book", zap.Error(err), zap.Int64("book_id", req.BookID))
		return nil, NewInternalError("Failed to update book")
	}
	if book == nil {
		return nil, NewNotFoundError("Book not found")
	}
	if !book.IsOwnedBy(req.UserID) {
		return nil, NewForbiddenError("You can only update your own books")
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Description != nil {
		book.Description = req.Description
	}
	if req.CoverURL != nil {
		book.CoverURL = req.CoverURL
	}
	if req.FileURL != nil {
		book.FileURL = req.FileURL
	}
	if req.IsPrivate != nil {
		book.IsPrivate = *req.IsPrivate
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		s.logger.Error("Failed to update book", zap.Error(err), zap.Int64("book_id", req.BookID))
		return nil, NewInternalError("Failed to update book")
	}

	s.logger.Info("Book updated successfully",
		zap.Int64("book_id", book.ID),
		zap.Int64("user_id", req.UserID),
	)
	return book, nil
}

// DeleteBook removes a book; only the owner may delete. Comments and
// ratings of the book go with it.
func (s *bookService) DeleteBook(ctx context.Context, bookID, userID int64) error {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		s.logger.Error("Failed to load book", zap.Error(err), zap.Int64("book_id", bookID))
		return NewInternalError("Failed to delete book")
	}
	if book == nil {
		return NewNotFoundError("Book not found")
	}
	if !book.IsOwnedBy(userID) {
		return NewForbiddenError("You can only delete your own books")
	}

	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		s.logger.Error("Failed to delete book", zap.Error(err), zap.Int64("book_id", bookID))
		return NewInternalError("Failed to delete book")
	}
	return nil
}

// ListPublicBooks lists the public catalog with optional search over title
// and author and a descending sort on date, views or rating.
func (s *bookService) ListPublicBooks(ctx context.Context, req *ListBooksRequest) (*models.PaginatedResponse[*models.Book], error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid list parameters", err)
	}

	result, err := s.bookRepo.ListPublic(ctx, req.Search, req.SortBy, req.Pagination)
	if err != nil {
		s.logger.Error("Failed to list public books", zap.Error(err))
		return nil, NewInternalError("Failed to list books")
	}
	return result, nil
}

// ListMyBooks lists every book of the caller, private included
func (s *bookService) ListMyBooks(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error) {
	result, err := s.bookRepo.ListByOwner(ctx, userID, params)
	if err != nil {
		s.logger.Error("Failed to list own books", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("Failed to list books")
	}
	return result, nil
}

// ListUserBooks lists the public books of another user
func (s *bookService) ListUserBooks(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error) {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to load user", zap.Error(err), zap.Int64("user_id", ownerID))
		return nil, NewInternalError("Failed to list books")
	}
	if owner == nil {
		return nil, NewNotFoundError("User not found")
	}

	result, err := s.bookRepo.ListPublicByOwner(ctx, ownerID, params)
	if err != nil {
		s.logger.Error("Failed to list user books", zap.Error(err), zap.Int64("user_id", ownerID))
		return nil, NewInternalError("Failed to list books")
	}
	return result, nil
}
