package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"bookhub/internal/database"
	"bookhub/internal/models"

	"go.uber.org/zap"
)

// bookRepository implements BookRepository with PostgreSQL
type bookRepository struct {
	*BaseRepository
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *database.Manager, logger *zap.Logger) BookRepository {
	return &bookRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// bookSelect is the shared projection: book columns plus owner username
// and rating/comment aggregates.
const bookSelect = `
	SELECT
		b.id, b.user_id, b.title, b.author, b.description, b.cover_url,
		b.file_url, b.is_private, b.view_count, b.created_at, b.updated_at,
		u.username AS owner_username,
		COALESCE(r.avg_score, 0) AS avg_rating,
		COALESCE(r.score_count, 0) AS rating_count,
		COALESCE(c.comment_count, 0) AS comment_count
	FROM books b
	INNER JOIN users u ON u.id = b.user_id
	LEFT JOIN (
		SELECT book_id, AVG(score)::float8 AS avg_score, COUNT(*) AS score_count
		FROM ratings GROUP BY book_id
	) r ON r.book_id = b.id
	LEFT JOIN (
		SELECT book_id, COUNT(*) AS comment_count
		FROM comments GROUP BY book_id
	) c ON c.book_id = b.id`

// Create inserts a new book
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	query := `
		INSERT INTO books (user_id, title, author, description, cover_url, file_url, is_private)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, view_count, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		book.UserID, book.Title, book.Author, book.Description,
		book.CoverURL, book.FileURL, book.IsPrivate,
	).Scan(&book.ID, &book.ViewCount, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	r.GetLogger().Info("Book created successfully",
		zap.Int64("book_id", book.ID),
		zap.Int64("user_id", book.UserID),
		zap.String("title", book.Title),
	)
	return nil
}

// GetByID retrieves a book with its aggregates, (nil, nil) when not found
func (r *bookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	query := bookSelect + ` WHERE b.id = $1`
	return r.scanBookRow(r.QueryRowContext(ctx, query, id))
}

// RetrieveAndIncrementViews bumps view_count and returns the refreshed row.
// The increment happens database-side so concurrent reads never lose counts.
func (r *bookRepository) RetrieveAndIncrementViews(ctx context.Context, id int64) (*models.Book, error) {
	query := `
		WITH bumped AS (
			UPDATE books SET view_count = view_count + 1
			WHERE id = $1
			RETURNING id, user_id, title, author, description, cover_url,
				file_url, is_private, view_count, created_at, updated_at
		)
		SELECT
			b.id, b.user_id, b.title, b.author, b.description, b.cover_url,
			b.file_url, b.is_private, b.view_count, b.created_at, b.updated_at,
			u.username AS owner_username,
			COALESCE(r.avg_score, 0) AS avg_rating,
			COALESCE(r.score_count, 0) AS rating_count,
			COALESCE(c.comment_count, 0) AS comment_count
		FROM bumped b
		INNER JOIN users u ON u.id = b.user_id
		LEFT JOIN (
			SELECT book_id, AVG(score)::float8 AS avg_score, COUNT(*) AS score_count
			FROM ratings WHERE book_id = $1 GROUP BY book_id
		) r ON r.book_id = b.id
		LEFT JOIN (
			SELECT book_id, COUNT(*) AS comment_count
			FROM comments WHERE book_id = $1 GROUP BY book_id
		) c ON c.book_id = b.id`

	return r.scanBookRow(r.QueryRowContext(ctx, query, id))
}

// Update persists changed fields of an existing book
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, description = $4, cover_url = $5,
			file_url = $6, is_private = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		book.ID, book.Title, book.Author, book.Description,
		book.CoverURL, book.FileURL, book.IsPrivate,
	).Scan(&book.UpdatedAt)
	if r.IsNotFound(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

// Delete removes a book; comments and ratings cascade at the database level
func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}

	r.GetLogger().Info("Book deleted successfully", zap.Int64("book_id", id))
	return nil
}

// ListPublic lists non-private books with optional search over title and
// author and one of the supported sort orders, all descending.
func (r *bookRepository) ListPublic(ctx context.Context, search, sortBy string, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error) {
	params.Normalize()

	where := ` WHERE b.is_private = FALSE`
	args := []interface{}{}
	argIndex := 1

	if search != "" {
		where += fmt.Sprintf(` AND (b.title ILIKE $%d OR b.author ILIKE $%d)`, argIndex, argIndex)
		args = append(args, "%"+search+"%")
		argIndex++
	}

	var orderBy string
	switch sortBy {
	case models.BookSortViews:
		orderBy = ` ORDER BY b.view_count DESC, b.id DESC`
	case models.BookSortRating:
		orderBy = ` ORDER BY avg_rating DESC, b.id DESC`
	default:
		orderBy = ` ORDER BY b.created_at DESC, b.id DESC`
	}

	countQuery := `SELECT COUNT(*) FROM books b` + where
	total, err := r.GetTotalCount(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	query := bookSelect + where + orderBy +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argIndex, argIndex+1)
	args = append(args, params.PageSize, params.Offset())

	books, err := r.queryBooks(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	filters := map[string]any{}
	if search != "" {
		filters["search"] = search
	}
	if sortBy != "" {
		filters["sort_by"] = sortBy
	}

	return &models.PaginatedResponse[*models.Book]{
		Data:       books,
		Pagination: models.NewPaginationMeta(params, total),
		Filters:    filters,
	}, nil
}

// ListByOwner lists every book of the owner, private included
func (r *bookRepository) ListByOwner(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error) {
	return r.listByOwner(ctx, ownerID, false, params)
}

// ListPublicByOwner lists the owner's public books only
func (r *bookRepository) ListPublicByOwner(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error) {
	return r.listByOwner(ctx, ownerID, true, params)
}

func (r *bookRepository) listByOwner(ctx context.Context, ownerID int64, publicOnly bool, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error) {
	params.Normalize()

	where := ` WHERE b.user_id = $1`
	if publicOnly {
		where += ` AND b.is_private = FALSE`
	}

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM books b`+where, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	query := bookSelect + where + ` ORDER BY b.created_at DESC, b.id DESC LIMIT $2 OFFSET $3`
	books, err := r.queryBooks(ctx, query, ownerID, params.PageSize, params.Offset())
	if err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Book]{
		Data:       books,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

func (r *bookRepository) queryBooks(ctx context.Context, query string, args ...interface{}) ([]*models.Book, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]*models.Book, 0)
	for rows.Next() {
		book, err := r.scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *bookRepository) scanBook(s rowScanner) (*models.Book, error) {
	var book models.Book
	err := s.Scan(
		&book.ID, &book.UserID, &book.Title, &book.Author, &book.Description,
		&book.CoverURL, &book.FileURL, &book.IsPrivate, &book.ViewCount,
		&book.CreatedAt, &book.UpdatedAt,
		&book.OwnerUsername, &book.AvgRating, &book.RatingCount, &book.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) scanBookRow(row *sql.Row) (*models.Book, error) {
	book, err := r.scanBook(row)
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}
	return book, nil
}
