package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"bookhub/internal/database"
	"bookhub/internal/models"

	"go.uber.org/zap"
)

// sessionRepository implements SessionRepository with PostgreSQL
type sessionRepository struct {
	*BaseRepository
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.Manager, logger *zap.Logger) SessionRepository {
	return &sessionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a new session
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, token, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		session.UserID, session.Token, session.RefreshToken,
		session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByToken retrieves a session by its access token, (nil, nil) when absent
func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	return r.scanSession(r.QueryRowContext(ctx, `
		SELECT id, user_id, token, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM sessions WHERE token = $1`, token))
}

// GetByRefreshToken retrieves a session by its refresh token, (nil, nil) when absent
func (r *sessionRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	return r.scanSession(r.QueryRowContext(ctx, `
		SELECT id, user_id, token, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM sessions WHERE refresh_token = $1`, refreshToken))
}

// DeleteByToken removes the session holding the given access token
func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	result, err := r.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByUserID removes every session of a user and returns the access
// tokens that were revoked so callers can evict cached claims.
func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.QueryContext(ctx, `DELETE FROM sessions WHERE user_id = $1 RETURNING token`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user sessions: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan revoked session token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// DeleteExpired removes sessions past their expiry and reports how many
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected > 0 {
		r.GetLogger().Info("Expired sessions cleaned up", zap.Int64("count", affected))
	}
	return affected, nil
}

func (r *sessionRepository) scanSession(row *sql.Row) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID, &session.UserID, &session.Token, &session.RefreshToken,
		&session.UserAgent, &session.IPAddress, &session.ExpiresAt, &session.CreatedAt,
	)
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return &session, nil
}
