package services

import (
	"context"
	"fmt"
	"time"

	"bookhub/internal/cache"
	"bookhub/internal/models"
	"bookhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RatingServiceConfig holds tunables for the rating service
type RatingServiceConfig struct {
	SummaryCacheTTL time.Duration
}

// DefaultRatingServiceConfig returns sensible defaults
func DefaultRatingServiceConfig() *RatingServiceConfig {
	return &RatingServiceConfig{
		SummaryCacheTTL: 5 * time.Minute,
	}
}

// ratingService implements RatingService
type ratingService struct {
	ratingRepo repositories.RatingRepository
	bookRepo   repositories.BookRepository
	cache      cache.Cache
	config     *RatingServiceConfig
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewRatingService creates a new rating service
func NewRatingService(
	ratingRepo repositories.RatingRepository,
	bookRepo repositories.BookRepository,
	c cache.Cache,
	config *RatingServiceConfig,
	logger *zap.Logger,
) RatingService {
	if config == nil {
		config = DefaultRatingServiceConfig()
	}
	return &ratingService{
		ratingRepo: ratingRepo,
		bookRepo:   bookRepo,
		cache:      c,
		config:     config,
		validator:  validator.New(),
		logger:     logger,
	}
}

// RateBook records the caller's score for a book. A second rating by the
// same user replaces the first in a single conditional upsert keyed on the
// (user, book) pair.
func (s *ratingService) RateBook(ctx context.Context, req *RateBookRequest) (*models.Rating, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Score must be between 1 and 5", err)
	}

	book, err := s.bookRepo.GetByID(ctx, req.BookID)
	if err != nil {
		s.logger.Error("Failed to load book for rating", zap.Error(err), zap.Int64("book_id", req.BookID))
		return nil, NewInternalError("Failed to rate book")
	}
	if book == nil {
		return nil, NewNotFoundError("Book not found")
	}
	if book.IsOwnedBy(req.UserID) {
		return nil, NewForbiddenError("You cannot rate your own book")
	}

	rating := &models.Rating{
		UserID: req.UserID,
		BookID: req.BookID,
		Score:  req.Score,
	}
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		s.logger.Error("Failed to save rating",
			zap.Error(err),
			zap.Int64("book_id", req.BookID),
			zap.Int64("user_id", req.UserID),
		)
		return nil, NewInternalError("Failed to rate book")
	}

	s.invalidateSummary(ctx, req.BookID)
	return rating, nil
}

// RemoveRating deletes the caller's rating of the book
func (s *ratingService) RemoveRating(ctx context.Context, userID, bookID int64) error {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		s.logger.Error("Failed to load book for rating removal", zap.Error(err), zap.Int64("book_id", bookID))
		return NewInternalError("Failed to remove rating")
	}
	if book == nil {
		return NewNotFoundError("Book not found")
	}

	if err := s.ratingRepo.DeleteByUserAndBook(ctx, userID, bookID); err != nil {
		if repoNotFound(err) {
			return NewNotFoundError("Rating not found")
		}
		s.logger.Error("Failed to remove rating",
			zap.Error(err),
			zap.Int64("book_id", bookID),
			zap.Int64("user_id", userID),
		)
		return NewInternalError("Failed to remove rating")
	}

	s.invalidateSummary(ctx, bookID)
	s.logger.Info("Rating removed",
		zap.Int64("book_id", bookID),
		zap.Int64("user_id", userID),
	)
	return nil
}

// GetSummary returns the aggregate rating view of a book: total count,
// per-score buckets and the mean (0 when the book has no ratings).
func (s *ratingService) GetSummary(ctx context.Context, bookID int64) (*models.RatingSummary, error) {
	cacheKey := s.summaryKey(bookID)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		if summary, ok := cached.(*models.RatingSummary); ok {
			return summary, nil
		}
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		s.logger.Error("Failed to load book for summary", zap.Error(err), zap.Int64("book_id", bookID))
		return nil, NewInternalError("Failed to load rating summary")
	}
	if book == nil {
		return nil, NewNotFoundError("Book not found")
	}

	summary, err := s.ratingRepo.Summary(ctx, bookID)
	if err != nil {
		s.logger.Error("Failed to load rating summary", zap.Error(err), zap.Int64("book_id", bookID))
		return nil, NewInternalError("Failed to load rating summary")
	}

	if err := s.cache.Set(ctx, cacheKey, summary, s.config.SummaryCacheTTL); err != nil {
		s.logger.Warn("Failed to cache rating summary", zap.Error(err), zap.Int64("book_id", bookID))
	}
	return summary, nil
}

func (s *ratingService) summaryKey(bookID int64) string {
	return fmt.Sprintf("rating:summary:%d", bookID)
}

func (s *ratingService) invalidateSummary(ctx context.Context, bookID int64) {
	if err := s.cache.Delete(ctx, s.summaryKey(bookID)); err != nil {
		s.logger.Warn("Failed to invalidate rating summary cache",
			zap.Error(err),
			zap.Int64("book_id", bookID),
		)
	}
}
