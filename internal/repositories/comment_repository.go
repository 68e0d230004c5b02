package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"bookhub/internal/database"
	"bookhub/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// commentRepository implements CommentRepository with PostgreSQL
type commentRepository struct {
	*BaseRepository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *database.Manager, logger *zap.Logger) CommentRepository {
	return &commentRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const commentSelect = `
	SELECT
		c.id, c.book_id, c.user_id, c.content, c.parent_id, c.child_id,
		c.is_edited, c.created_at, c.updated_at,
		u.username AS author_username, u.avatar_url AS author_avatar
	FROM comments c
	LEFT JOIN users u ON u.id = c.user_id`

// Create inserts a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (book_id, user_id, content, parent_id, child_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_edited, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		comment.BookID, comment.UserID, comment.Content,
		comment.ParentID, comment.ChildID,
	).Scan(&comment.ID, &comment.IsEdited, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	r.GetLogger().Info("Comment created successfully",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("book_id", comment.BookID),
	)
	return nil
}

// GetByID retrieves a comment, (nil, nil) when not found
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	row := r.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id)

	comment, err := r.scanComment(row)
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}
	return comment, nil
}

// UpdateContent replaces the comment body and flags the edit
func (r *commentRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	result, err := r.ExecContext(ctx, `
		UPDATE comments
		SET content = $2, is_edited = TRUE, updated_at = NOW()
		WHERE id = $1`, id, content)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a comment; direct replies cascade through parent_id
func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}

	r.GetLogger().Info("Comment deleted successfully", zap.Int64("comment_id", id))
	return nil
}

// ListTopLevelByBook returns top-level comments of a book, newest first
func (r *commentRepository) ListTopLevelByBook(ctx context.Context, bookID int64) ([]*models.Comment, error) {
	query := commentSelect + `
		WHERE c.book_id = $1 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC, c.id DESC`

	return r.queryComments(ctx, query, bookID)
}

// ListRepliesByParents returns all replies whose parent is in the given
// set, oldest first, so each thread reads top to bottom.
func (r *commentRepository) ListRepliesByParents(ctx context.Context, parentIDs []int64) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return []*models.Comment{}, nil
	}

	query := commentSelect + `
		WHERE c.parent_id = ANY($1)
		ORDER BY c.created_at ASC, c.id ASC`

	return r.queryComments(ctx, query, pq.Array(parentIDs))
}

func (r *commentRepository) queryComments(ctx context.Context, query string, args ...interface{}) ([]*models.Comment, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		comment, err := r.scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *commentRepository) scanComment(s rowScanner) (*models.Comment, error) {
	var comment models.Comment
	err := s.Scan(
		&comment.ID, &comment.BookID, &comment.UserID, &comment.Content,
		&comment.ParentID, &comment.ChildID, &comment.IsEdited,
		&comment.CreatedAt, &comment.UpdatedAt,
		&comment.AuthorUsername, &comment.AuthorAvatar,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
