package repositories

import (
	"context"
	"time"

	"bookhub/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Core CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error

	// Account state
	SetVerified(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateLastSeen(ctx context.Context, userID int64) error
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID int64) ([]string, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenRepository defines the interface for one-time token data access
// (email verification and password reset tokens).
type TokenRepository interface {
	Create(ctx context.Context, userID int64, token, purpose string, expiresAt time.Time) error
	// Consume marks the token used and returns its owner; expired or
	// already-used tokens return sql.ErrNoRows.
	Consume(ctx context.Context, token, purpose string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// BookRepository defines the interface for book data access
type BookRepository interface {
	// Core CRUD operations
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id int64) error

	// RetrieveAndIncrementViews bumps view_count by one and returns the
	// refreshed row in a single statement.
	RetrieveAndIncrementViews(ctx context.Context, id int64) (*models.Book, error)

	// Listing
	ListPublic(ctx context.Context, search, sortBy string, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error)
	ListByOwner(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error)
	ListPublicByOwner(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error

	// ListTopLevelByBook returns top-level comments newest first.
	ListTopLevelByBook(ctx context.Context, bookID int64) ([]*models.Comment, error)
	// ListRepliesByParents returns replies for the given parents oldest first.
	ListRepliesByParents(ctx context.Context, parentIDs []int64) ([]*models.Comment, error)
}

// RatingRepository defines the interface for rating data access
type RatingRepository interface {
	// Upsert inserts the rating or replaces the score of the existing
	// (user, book) row in one statement.
	Upsert(ctx context.Context, rating *models.Rating) error
	GetByUserAndBook(ctx context.Context, userID, bookID int64) (*models.Rating, error)
	// DeleteByUserAndBook returns sql.ErrNoRows when no rating exists.
	DeleteByUserAndBook(ctx context.Context, userID, bookID int64) error
	Summary(ctx context.Context, bookID int64) (*models.RatingSummary, error)
}

// FriendRepository defines the interface for friend request and
// friendship data access
type FriendRepository interface {
	// Requests
	CreateRequest(ctx context.Context, request *models.FriendRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.FriendRequest, error)
	GetRequestBetween(ctx context.Context, fromUserID, toUserID int64) (*models.FriendRequest, error)
	ListIncoming(ctx context.Context, userID int64) ([]*models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID int64) ([]*models.FriendRequest, error)
	DeleteRequest(ctx context.Context, id int64) error

	// AcceptRequest marks the request accepted and creates the friendship
	// edge owned by the recipient in one transaction.
	AcceptRequest(ctx context.Context, requestID, recipientID int64) (*models.Friend, error)

	// Friendships
	GetFriendByID(ctx context.Context, id int64) (*models.Friend, error)
	ListFriends(ctx context.Context, userID int64) ([]*models.Friend, error)
	DeleteFriend(ctx context.Context, id int64) error
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
}

// MessageRepository defines the interface for direct message data access
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListForUser returns every message the user sent or received,
	// oldest first.
	ListForUser(ctx context.Context, userID int64) ([]*models.Message, error)
	// ListConversation returns the two-party thread oldest first.
	ListConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error)
	// MarkRead flags messages from otherID to readerID as read.
	MarkRead(ctx context.Context, readerID, otherID int64) error
}
