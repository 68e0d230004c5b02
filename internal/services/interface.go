package services

import (
	"context"

	"bookhub/internal/models"
)

// AuthService handles registration, login and the token lifecycle
type AuthService interface {
	// Registration & login
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error

	// Token lifecycle
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	VerifyToken(ctx context.Context, token string) (*TokenClaims, error)

	// Email verification & password reset
	RequestEmailAction(ctx context.Context, req *EmailActionRequest) error
	ConfirmEmail(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, req *ResetPasswordRequest) error
}

// UserService handles profiles and account lifecycle
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

// BookService handles the book catalog
type BookService interface {
	CreateBook(ctx context.Context, req *CreateBookRequest) (*models.Book, error)
	GetBook(ctx context.Context, bookID int64, viewerID *int64) (*models.Book, error)
	UpdateBook(ctx context.Context, req *UpdateBookRequest) (*models.Book, error)
	DeleteBook(ctx context.Context, bookID, userID int64) error

	ListPublicBooks(ctx context.Context, req *ListBooksRequest) (*models.PaginatedResponse[*models.Book], error)
	ListMyBooks(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error)
	ListUserBooks(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error)
}

// CommentService handles book comments with single-level threading
type CommentService interface {
	CreateComment(ctx context.Context, req *CreateCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, bookID int64) ([]*models.Comment, error)
	UpdateComment(ctx context.Context, req *UpdateCommentRequest) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID int64) error
}

// RatingService handles book ratings and their aggregates
type RatingService interface {
	RateBook(ctx context.Context, req *RateBookRequest) (*models.Rating, error)
	RemoveRating(ctx context.Context, userID, bookID int64) error
	GetSummary(ctx context.Context, bookID int64) (*models.RatingSummary, error)
}

// FriendService handles friend requests and friendships
type FriendService interface {
	SendRequest(ctx context.Context, req *SendFriendRequestRequest) (*models.FriendRequest, error)
	CancelRequest(ctx context.Context, requestID, userID int64) error
	AcceptRequest(ctx context.Context, req *FriendRequestActionRequest) (*models.Friend, error)
	DeclineRequest(ctx context.Context, requestID, userID int64) error

	ListIncomingRequests(ctx context.Context, userID int64) ([]*models.FriendRequest, error)
	ListOutgoingRequests(ctx context.Context, userID int64) ([]*models.FriendRequest, error)

	ListFriends(ctx context.Context, userID int64) ([]*models.Friend, error)
	Unfriend(ctx context.Context, friendID, userID int64) error
}

// MessageService handles direct messages
type MessageService interface {
	SendMessage(ctx context.Context, req *SendMessageRequest) (*models.Message, error)
	ListMyMessages(ctx context.Context, userID int64) ([]*models.Message, error)
	ListConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error)
}
