package services

import (
	"context"

	"bookhub/internal/models"
	"bookhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// commentService implements CommentService
type commentService struct {
	commentRepo repositories.CommentRepository
	bookRepo    repositories.BookRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo repositories.CommentRepository,
	bookRepo repositories.BookRepository,
	logger *zap.Logger,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		bookRepo:    bookRepo,
		validator:   validator.New(),
		logger:      logger,
	}
}

// CreateComment creates a top-level comment or a reply. Replies are kept
// one level deep: answering a reply re-parents the new comment onto the
// thread's top-level comment, with child_id recording which reply was
// answered.
func (s *commentService) CreateComment(ctx context.Context, req *CreateCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid comment data", err)
	}

	book, err := s.bookRepo.GetByID(ctx, req.BookID)
	if err != nil {
		s.logger.Error("Failed to load book for comment", zap.Error(err), zap.Int64("book_id", req.BookID))
		return nil, NewInternalError("Failed to create comment")
	}
	if book == nil {
		return nil, NewNotFoundError("Book not found")
	}
	if book.IsPrivate && !book.IsOwnedBy(req.UserID) {
		return nil, NewForbiddenError("Cannot comment on a private book")
	}

	comment := &models.Comment{
		BookID:  req.BookID,
		UserID:  &req.UserID,
		Content: req.Content,
	}

	if req.ParentID != nil {
		target, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			s.logger.Error("Failed to load parent comment", zap.Error(err), zap.Int64("parent_id", *req.ParentID))
			return nil, NewInternalError("Failed to create comment")
		}
		if target == nil {
			return nil, NewNotFoundError("Parent comment not found")
		}
		if target.BookID != req.BookID {
			return nil, NewValidationError("Parent comment belongs to a different book", nil)
		}

		// The answered comment is always recorded as child; the stored
		// parent is the top-level comment of the thread.
		comment.ChildID = &target.ID
		if target.ParentID != nil {
			comment.ParentID = target.ParentID
		} else {
			comment.ParentID = &target.ID
		}
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		s.logger.Error("Failed to create comment", zap.Error(err), zap.Int64("book_id", req.BookID))
		return nil, NewInternalError("Failed to create comment")
	}

	s.logger.Info("Comment created successfully",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("book_id", comment.BookID),
		zap.Int64("user_id", req.UserID),
		zap.Bool("is_reply", comment.ParentID != nil),
	)
	return comment, nil
}

// ListComments returns the book's top-level comments newest first, each
// carrying its reply count and replies oldest first.
func (s *commentService) ListComments(ctx context.Context, bookID int64) ([]*models.Comment, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		s.logger.Error("Failed to load book for comments", zap.Error(err), zap.Int64("book_id", bookID))
		return nil, NewInternalError("Failed to list comments")
	}
	if book == nil {
		return nil, NewNotFoundError("Book not found")
	}

	parents, err := s.commentRepo.ListTopLevelByBook(ctx, bookID)
	if err != nil {
		s.logger.Error("Failed to list comments", zap.Error(err), zap.Int64("book_id", bookID))
		return nil, NewInternalError("Failed to list comments")
	}

	parentIDs := make([]int64, 0, len(parents))
	byID := make(map[int64]*models.Comment, len(parents))
	for _, parent := range parents {
		parent.Replies = []*models.Comment{}
		parentIDs = append(parentIDs, parent.ID)
		byID[parent.ID] = parent
	}

	replies, err := s.commentRepo.ListRepliesByParents(ctx, parentIDs)
	if err != nil {
		s.logger.Error("Failed to list replies", zap.Error(err), zap.Int64("book_id", bookID))
		return nil, NewInternalError("Failed to list comments")
	}

	for _, reply := range replies {
		parent, ok := byID[*reply.ParentID]
		if !ok {
			continue
		}
		parent.Replies = append(parent.Replies, reply)
		parent.ReplyCount++
	}

	return parents, nil
}

// UpdateComment edits the comment body; only the author may edit, and the
// edit is flagged.
func (s *commentService) UpdateComment(ctx context.Context, req *UpdateCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid comment data", err)
	}

	comment, err := s.commentRepo.GetByID(ctx, req.CommentID)
	if err != nil {
		s.logger.Error("Failed to load comment", zap.Error(err), zap.Int64("comment_id", req.CommentID))
		return nil, NewInternalError("Failed to update comment")
	}
	if comment == nil {
		return nil, NewNotFoundError("Comment not found")
	}
	if !comment.IsAuthoredBy(req.UserID) {
		return nil, NewForbiddenError("You can only edit your own comments")
	}

	if err := s.commentRepo.UpdateContent(ctx, req.CommentID, req.Content); err != nil {
		s.logger.Error("Failed to update comment", zap.Error(err), zap.Int64("comment_id", req.CommentID))
		return nil, NewInternalError("Failed to update comment")
	}

	updated, err := s.commentRepo.GetByID(ctx, req.CommentID)
	if err != nil || updated == nil {
		s.logger.Error("Failed to reload comment", zap.Error(err), zap.Int64("comment_id", req.CommentID))
		return nil, NewInternalError("Failed to update comment")
	}

	s.logger.Info("Comment updated successfully",
		zap.Int64("comment_id", updated.ID),
		zap.Int64("user_id", req.UserID),
	)
	return updated, nil
}

// DeleteComment removes the comment; direct replies go with it.
func (s *commentService) DeleteComment(ctx context.Context, commentID, userID int64) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		s.logger.Error("Failed to load comment", zap.Error(err), zap.Int64("comment_id", commentID))
		return NewInternalError("Failed to delete comment")
	}
	if comment == nil {
		return NewNotFoundError("Comment not found")
	}
	if !comment.IsAuthoredBy(userID) {
		return NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		s.logger.Error("Failed to delete comment", zap.Error(err), zap.Int64("comment_id", commentID))
		return NewInternalError("Failed to delete comment")
	}

	s.logger.Info("Comment deleted successfully",
		zap.Int64("comment_id", commentID),
		zap.Int64("user_id", userID),
	)
	return nil
}
