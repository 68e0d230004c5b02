package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"bookhub/internal/database"
	"bookhub/internal/models"

	"go.uber.org/zap"
)

// friendRepository implements FriendRepository with PostgreSQL
type friendRepository struct {
	*BaseRepository
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *database.Manager, logger *zap.Logger) FriendRepository {
	return &friendRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const friendRequestSelect = `
	SELECT
		fr.id, fr.from_user_id, fr.to_user_id, fr.accepted, fr.created_at,
		fu.username AS from_username, tu.username AS to_username
	FROM friend_requests fr
	INNER JOIN users fu ON fu.id = fr.from_user_id
	INNER JOIN users tu ON tu.id = fr.to_user_id`

// ===============================
// FRIEND REQUESTS
// ===============================

// CreateRequest inserts a new friend request
func (r *friendRepository) CreateRequest(ctx context.Context, request *models.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (from_user_id, to_user_id)
		VALUES ($1, $2)
		RETURNING id, accepted, created_at`

	err := r.QueryRowContext(ctx, query,
		request.FromUserID, request.ToUserID,
	).Scan(&request.ID, &request.Accepted, &request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}

	r.GetLogger().Info("Friend request created",
		zap.Int64("request_id", request.ID),
		zap.Int64("from_user_id", request.FromUserID),
		zap.Int64("to_user_id", request.ToUserID),
	)
	return nil
}

// GetRequestByID retrieves a friend request, (nil, nil) when not found
func (r *friendRepository) GetRequestByID(ctx context.Context, id int64) (*models.FriendRequest, error) {
	row := r.QueryRowContext(ctx, friendRequestSelect+` WHERE fr.id = $1`, id)

	request, err := r.scanFriendRequest(row)
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan friend request: %w", err)
	}
	return request, nil
}

// GetRequestBetween retrieves the request for the ordered (from, to) pair,
// (nil, nil) when none exists.
func (r *friendRepository) GetRequestBetween(ctx context.Context, fromUserID, toUserID int64) (*models.FriendRequest, error) {
	row := r.QueryRowContext(ctx,
		friendRequestSelect+` WHERE fr.from_user_id = $1 AND fr.to_user_id = $2`,
		fromUserID, toUserID)

	request, err := r.scanFriendRequest(row)
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan friend request: %w", err)
	}
	return request, nil
}

// ListIncoming returns unaccepted requests addressed to the user
func (r *friendRepository) ListIncoming(ctx context.Context, userID int64) ([]*models.FriendRequest, error) {
	query := friendRequestSelect + `
		WHERE fr.to_user_id = $1 AND fr.accepted = FALSE
		ORDER BY fr.created_at DESC`
	return r.queryFriendRequests(ctx, query, userID)
}

// ListOutgoing returns unaccepted requests sent by the user
func (r *friendRepository) ListOutgoing(ctx context.Context, userID int64) ([]*models.FriendRequest, error) {
	query := friendRequestSelect + `
		WHERE fr.from_user_id = $1 AND fr.accepted = FALSE
		ORDER BY fr.created_at DESC`
	return r.queryFriendRequests(ctx, query, userID)
}

// DeleteRequest removes a friend request row
func (r *friendRepository) DeleteRequest(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AcceptRequest marks the request accepted and creates the friendship edge
// in one transaction. The edge is owned by the recipient and points at the
// sender; the WHERE clause pins the request to the recipient so a stale or
// foreign id cannot be accepted.
func (r *friendRepository) AcceptRequest(ctx context.Context, requestID, recipientID int64) (*models.Friend, error) {
	var friend *models.Friend

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var fromUserID int64
		err := tx.QueryRowContext(ctx, `
			UPDATE friend_requests
			SET accepted = TRUE
			WHERE id = $1 AND to_user_id = $2 AND accepted = FALSE
			RETURNING from_user_id`,
			requestID, recipientID,
		).Scan(&fromUserID)
		if err != nil {
			return err
		}

		f := &models.Friend{UserID: recipientID, FriendID: fromUserID}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO friends (user_id, friend_id)
			VALUES ($1, $2)
			RETURNING id, created_at`,
			f.UserID, f.FriendID,
		).Scan(&f.ID, &f.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create friendship: %w", err)
		}

		friend = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.GetLogger().Info("Friend request accepted",
		zap.Int64("request_id", requestID),
		zap.Int64("friend_id", friend.ID),
	)
	return friend, nil
}

// ===============================
// FRIENDSHIPS
// ===============================

// GetFriendByID retrieves a friendship edge, (nil, nil) when not found
func (r *friendRepository) GetFriendByID(ctx context.Context, id int64) (*models.Friend, error) {
	var friend models.Friend
	err := r.QueryRowContext(ctx, `
		SELECT id, user_id, friend_id, created_at
		FROM friends WHERE id = $1`, id,
	).Scan(&friend.ID, &friend.UserID, &friend.FriendID, &friend.CreatedAt)
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan friendship: %w", err)
	}
	return &friend, nil
}

// ListFriends returns the user's friendships from either side of the edge,
// with the other party's profile resolved per row.
func (r *friendRepository) ListFriends(ctx context.Context, userID int64) ([]*models.Friend, error) {
	query := `
		SELECT
			f.id, f.user_id, f.friend_id, f.created_at,
			u.username AS friend_username, u.avatar_url AS friend_avatar
		FROM friends f
		INNER JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		WHERE f.user_id = $1 OR f.friend_id = $1
		ORDER BY f.created_at DESC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := make([]*models.Friend, 0)
	for rows.Next() {
		var friend models.Friend
		err := rows.Scan(
			&friend.ID, &friend.UserID, &friend.FriendID, &friend.CreatedAt,
			&friend.FriendUsername, &friend.FriendAvatar,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		friends = append(friends, &friend)
	}
	return friends, rows.Err()
}

// DeleteFriend removes a friendship edge
func (r *friendRepository) DeleteFriend(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM friends WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}

	r.GetLogger().Info("Friendship removed", zap.Int64("friend_id", id))
	return nil
}

// AreFriends reports whether a friendship edge exists in either direction
func (r *friendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE (user_id = $1 AND friend_id = $2)
			   OR (user_id = $2 AND friend_id = $1)
		)`, userID, otherID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

func (r *friendRepository) queryFriendRequests(ctx context.Context, query string, args ...interface{}) ([]*models.FriendRequest, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.FriendRequest, 0)
	for rows.Next() {
		request, err := r.scanFriendRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func (r *friendRepository) scanFriendRequest(s rowScanner) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := s.Scan(
		&request.ID, &request.FromUserID, &request.ToUserID,
		&request.Accepted, &request.CreatedAt,
		&request.FromUsername, &request.ToUsername,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}
