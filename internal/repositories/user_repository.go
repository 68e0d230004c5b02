package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"bookhub/internal/database"
	"bookhub/internal/models"

	"go.uber.org/zap"
)

// userRepository implements UserRepository with PostgreSQL
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `
	id, username, email, password_hash, first_name, last_name,
	bio, avatar_url, is_verified, last_seen, created_at, updated_at`

// Create inserts a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, bio, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_verified, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.Bio, user.AvatarURL,
	).Scan(&user.ID, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Info("User created successfully",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return nil
}

// GetByID retrieves a user by ID, returning (nil, nil) when not found
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanUser(r.QueryRowContext(ctx, query, id))
}

// GetByUsername retrieves a user by username, returning (nil, nil) when not found
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(username) = LOWER($1)`, userColumns)
	return r.scanUser(r.QueryRowContext(ctx, query, username))
}

// GetByEmail retrieves a user by email, returning (nil, nil) when not found
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(email) = LOWER($1)`, userColumns)
	return r.scanUser(r.QueryRowContext(ctx, query, email))
}

// Update persists profile fields of an existing user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, bio = $4, avatar_url = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Bio, user.AvatarURL,
	).Scan(&user.UpdatedAt)
	if r.IsNotFound(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user. Books, ratings, friend requests, friendships and
// sessions cascade at the database level; comments keep their rows with
// user_id cleared.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	r.GetLogger().Info("User deleted successfully", zap.Int64("user_id", id))
	return nil
}

// SetVerified marks the user's email as verified
func (r *userRepository) SetVerified(ctx context.Context, userID int64) error {
	result, err := r.ExecContext(ctx,
		`UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	result, err := r.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateLastSeen bumps the user's last_seen timestamp
func (r *userRepository) UpdateLastSeen(ctx context.Context, userID int64) error {
	_, err := r.ExecContext(ctx,
		`UPDATE users SET last_seen = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	return nil
}

// scanUser scans a single user row
func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Bio, &user.AvatarURL,
		&user.IsVerified, &user.LastSeen, &user.CreatedAt, &user.UpdatedAt,
	)
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
