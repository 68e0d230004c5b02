package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"bookhub/internal/database"
	"bookhub/internal/models"

	"go.uber.org/zap"
)

// ratingRepository implements RatingRepository with PostgreSQL
type ratingRepository struct {
	*BaseRepository
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *database.Manager, logger *zap.Logger) RatingRepository {
	return &ratingRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Upsert inserts the rating or replaces the score of the existing
// (user, book) row. A single statement keyed on the unique pair, so a
// re-rate can never race a concurrent insert into a duplicate.
func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (user_id, book_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET score = EXCLUDED.score, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		rating.UserID, rating.BookID, rating.Score,
	).Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}

	r.GetLogger().Info("Rating saved",
		zap.Int64("user_id", rating.UserID),
		zap.Int64("book_id", rating.BookID),
		zap.Int("score", rating.Score),
	)
	return nil
}

// GetByUserAndBook retrieves a user's rating of a book, (nil, nil) when absent
func (r *ratingRepository) GetByUserAndBook(ctx context.Context, userID, bookID int64) (*models.Rating, error) {
	var rating models.Rating
	err := r.QueryRowContext(ctx, `
		SELECT id, user_id, book_id, score, created_at, updated_at
		FROM ratings WHERE user_id = $1 AND book_id = $2`,
		userID, bookID,
	).Scan(&rating.ID, &rating.UserID, &rating.BookID, &rating.Score,
		&rating.CreatedAt, &rating.UpdatedAt)
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan rating: %w", err)
	}
	return &rating, nil
}

// DeleteByUserAndBook removes the user's rating of a book
func (r *ratingRepository) DeleteByUserAndBook(ctx context.Context, userID, bookID int64) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM ratings WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Summary aggregates every rating of a book into count, mean and per-score
// buckets. A book with no ratings yields total 0, mean 0 and empty buckets.
func (r *ratingRepository) Summary(ctx context.Context, bookID int64) (*models.RatingSummary, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT score, COUNT(*)
		FROM ratings WHERE book_id = $1
		GROUP BY score`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating summary: %w", err)
	}
	defer rows.Close()

	summary := &models.RatingSummary{
		BookID:  bookID,
		Buckets: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	sum := 0
	for rows.Next() {
		var score, count int
		if err := rows.Scan(&score, &count); err != nil {
			return nil, fmt.Errorf("failed to scan rating bucket: %w", err)
		}
		summary.Buckets[score] = count
		summary.Total += count
		sum += score * count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if summary.Total > 0 {
		summary.Mean = float64(sum) / float64(summary.Total)
	}
	return summary, nil
}
