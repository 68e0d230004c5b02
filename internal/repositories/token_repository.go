package repositories

import (
	"context"
	"fmt"
	"time"

	"bookhub/internal/database"

	"go.uber.org/zap"
)

// tokenRepository implements TokenRepository with PostgreSQL
type tokenRepository struct {
	*BaseRepository
}

// NewTokenRepository creates a new one-time token repository
func NewTokenRepository(db *database.Manager, logger *zap.Logger) TokenRepository {
	return &tokenRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create stores a one-time token for the given purpose
func (r *tokenRepository) Create(ctx context.Context, userID int64, token, purpose string, expiresAt time.Time) error {
	_, err := r.ExecContext(ctx, `
		INSERT INTO auth_tokens (user_id, token, purpose, expires_at)
		VALUES ($1, $2, $3, $4)`,
		userID, token, purpose, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create auth token: %w", err)
	}
	return nil
}

// Consume marks the token used and returns its owner. The UPDATE only
// matches live unused tokens, so replays and expired tokens surface as
// sql.ErrNoRows.
func (r *tokenRepository) Consume(ctx context.Context, token, purpose string) (int64, error) {
	var userID int64
	err := r.QueryRowContext(ctx, `
		UPDATE auth_tokens
		SET used = TRUE
		WHERE token = $1 AND purpose = $2 AND used = FALSE AND expires_at > NOW()
		RETURNING user_id`,
		token, purpose).Scan(&userID)
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// DeleteExpired removes dead tokens and reports how many
func (r *tokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE expires_at < NOW() OR used = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected > 0 {
		r.GetLogger().Debug("Expired auth tokens cleaned up", zap.Int64("count", affected))
	}
	return affected, nil
}
