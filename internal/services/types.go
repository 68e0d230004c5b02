package services

import (
	"time"

	"bookhub/internal/models"
)

// ===============================
// AUTH REQUEST/RESPONSE TYPES
// ===============================

// RegisterRequest carries registration input
type RegisterRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=50"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Username  string  `json:"username" validate:"required"`
	Password  string  `json:"password" validate:"required"`
	UserAgent *string `json:"-"`
	IPAddress *string `json:"-"`
}

// AuthResponse carries issued tokens and the authenticated user
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// TokenClaims is the decoded content of a verified access token
type TokenClaims struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EmailActionRequest starts an email-driven flow. Action is either
// "verify" (confirm the account email) or "reset" (begin a password reset).
type EmailActionRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Action string `json:"action" validate:"required,oneof=verify reset"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// ===============================
// USER REQUEST TYPES
// ===============================

// UpdateProfileRequest carries a partial profile update; nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	UserID    int64   `json:"-"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// ===============================
// BOOK REQUEST TYPES
// ===============================

// CreateBookRequest carries book creation input
type CreateBookRequest struct {
	UserID      int64   `json:"-"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Author      string  `json:"author" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	CoverURL    *string `json:"cover_url,omitempty" validate:"omitempty,url"`
	FileURL     *string `json:"file_url,omitempty" validate:"omitempty,url"`
	IsPrivate   bool    `json:"is_private"`
}

// UpdateBookRequest carries a partial book update; nil fields are left
// unchanged.
type UpdateBookRequest struct {
	BookID      int64   `json:"-"`
	UserID      int64   `json:"-"`
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Author      *string `json:"author,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	CoverURL    *string `json:"cover_url,omitempty" validate:"omitempty,url"`
	FileURL     *string `json:"file_url,omitempty" validate:"omitempty,url"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}

// ListBooksRequest carries public catalog listing inputs
type ListBooksRequest struct {
	Search     string                  `json:"search"`
	SortBy     string                  `json:"sort_by" validate:"omitempty,oneof=date views rating"`
	Pagination models.PaginationParams `json:"pagination"`
}

// ===============================
// COMMENT REQUEST TYPES
// ===============================

// CreateCommentRequest carries comment creation input. ParentID, when set,
// references the comment being answered; it may itself be a reply.
type CreateCommentRequest struct {
	BookID   int64  `json:"-"`
	UserID   int64  `json:"-"`
	Content  string `json:"content" validate:"required,min=1,max=500"`
	ParentID *int64 `json:"parent,omitempty"`
}

// UpdateCommentRequest carries a comment edit
type UpdateCommentRequest struct {
	CommentID int64  `json:"-"`
	UserID    int64  `json:"-"`
	Content   string `json:"content" validate:"required,min=1,max=500"`
}

// ===============================
// RATING REQUEST TYPES
// ===============================

// RateBookRequest carries a rating submission
type RateBookRequest struct {
	BookID int64 `json:"-"`
	UserID int64 `json:"-"`
	Score  int   `json:"score" validate:"required,min=1,max=5"`
}

// ===============================
// FRIEND REQUEST TYPES
// ===============================

// SendFriendRequestRequest carries a new friend request
type SendFriendRequestRequest struct {
	FromUserID int64 `json:"-"`
	ToUserID   int64 `json:"to_user" validate:"required"`
}

// FriendRequestActionRequest carries the accept action on a pending request
type FriendRequestActionRequest struct {
	RequestID int64  `json:"-"`
	UserID    int64  `json:"-"`
	Action    string `json:"action" validate:"required"`
}

// ===============================
// MESSAGE REQUEST TYPES
// ===============================

// SendMessageRequest carries a direct message submission
type SendMessageRequest struct {
	SenderID   int64  `json:"-"`
	ReceiverID int64  `json:"receiver" validate:"required"`
	Body       string `json:"body" validate:"required,min=1,max=1000"`
}
