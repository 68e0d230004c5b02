package services

import (
	"context"
	"database/sql"
	"testing"

	"bookhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRatingServiceForTest(ratingRepo *fakeRatingRepo, bookRepo *fakeBookRepo, c *fakeCache) RatingService {
	return NewRatingService(ratingRepo, bookRepo, c, nil, zap.NewNop())
}

func TestRateBook_UpsertsScore(t *testing.T) {
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	var saved *models.Rating
	ratingRepo := &fakeRatingRepo{
		upsert: func(ctx context.Context, rating *models.Rating) error {
			rating.ID = 50
			saved = rating
			return nil
		},
	}
	c := newFakeCache()
	svc := newRatingServiceForTest(ratingRepo, bookRepo, c)

	rating, err := svc.RateBook(context.Background(), &RateBookRequest{BookID: 10, UserID: 2, Score: 4})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 4, rating.Score)
	assert.Equal(t, 1, c.deletes, "summary cache must be invalidated on rating")
}

func TestRateBook_OwnerForbidden(t *testing.T) {
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	svc := newRatingServiceForTest(&fakeRatingRepo{}, bookRepo, newFakeCache())

	_, err := svc.RateBook(context.Background(), &RateBookRequest{BookID: 10, UserID: 1, Score: 5})
	require.Error(t, err)
	assert.True(t, IsForbiddenError(err))
}

func TestRateBook_ScoreOutOfRange(t *testing.T) {
	svc := newRatingServiceForTest(&fakeRatingRepo{}, &fakeBookRepo{}, newFakeCache())

	for _, score := range []int{0, 6, -1} {
		_, err := svc.RateBook(context.Background(), &RateBookRequest{BookID: 10, UserID: 2, Score: score})
		require.Error(t, err, "score %d must be rejected", score)
		assert.True(t, IsValidationError(err))
	}
}

func TestRemoveRating_NoneExists(t *testing.T) {
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	ratingRepo := &fakeRatingRepo{
		deleteByUserAndBook: func(ctx context.Context, userID, bookID int64) error {
			return sql.ErrNoRows
		},
	}
	svc := newRatingServiceForTest(ratingRepo, bookRepo, newFakeCache())

	err := svc.RemoveRating(context.Background(), 2, 10)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestGetSummary_CachesResult(t *testing.T) {
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	calls := 0
	ratingRepo := &fakeRatingRepo{
		summary: func(ctx context.Context, bookID int64) (*models.RatingSummary, error) {
			calls++
			return &models.RatingSummary{
				BookID:  bookID,
				Total:   3,
				Mean:    4.0,
				Buckets: map[int]int{1: 0, 2: 0, 3: 1, 4: 1, 5: 1},
			}, nil
		},
	}
	c := newFakeCache()
	svc := newRatingServiceForTest(ratingRepo, bookRepo, c)

	first, err := svc.GetSummary(context.Background(), 10)
	require.NoError(t, err)
	second, err := svc.GetSummary(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second read must come from cache")
	assert.Equal(t, first, second)
	assert.Equal(t, 3, first.Total)
	assert.InDelta(t, 4.0, first.Mean, 0.001)
}

func TestGetSummary_EmptyBook(t *testing.T) {
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	ratingRepo := &fakeRatingRepo{
		summary: func(ctx context.Context, bookID int64) (*models.RatingSummary, error) {
			return &models.RatingSummary{
				BookID:  bookID,
				Total:   0,
				Mean:    0,
				Buckets: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
			}, nil
		},
	}
	svc := newRatingServiceForTest(ratingRepo, bookRepo, newFakeCache())

	summary, err := svc.GetSummary(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Zero(t, summary.Mean, "an unrated book reports mean 0, not NaN")
	assert.Len(t, summary.Buckets, 5)
}
