// Package models defines the core domain entities for the reading platform.
package models

import (
	"time"
)

// ===============================
// USER & SESSION MODELS
// ===============================

// User represents a registered reader on the platform.
type User struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username" validate:"required,min=3,max=30,alphanum"`
	Email        string     `json:"email" db:"email" validate:"required,email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    *string    `json:"first_name,omitempty" db:"first_name"`
	LastName     *string    `json:"last_name,omitempty" db:"last_name"`
	Bio          *string    `json:"bio,omitempty" db:"bio" validate:"omitempty,max=500"`
	AvatarURL    *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	IsVerified   bool       `json:"is_verified" db:"is_verified"`
	LastSeen     *time.Time `json:"last_seen,omitempty" db:"last_seen"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`

	// Computed fields (not stored)
	BookCount   int `json:"book_count,omitempty" db:"-"`
	FriendCount int `json:"friend_count,omitempty" db:"-"`
}

// DisplayName returns the friendliest available name for the user.
func (u *User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		if u.LastName != nil && *u.LastName != "" {
			return *u.FirstName + " " + *u.LastName
		}
		return *u.FirstName
	}
	return u.Username
}

// Session represents an authenticated session backing a refresh token.
type Session struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Token        string    `json:"-" db:"token"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	UserAgent    *string   `json:"user_agent,omitempty" db:"user_agent"`
	IPAddress    *string   `json:"ip_address,omitempty" db:"ip_address"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ===============================
// BOOK MODELS
// ===============================

// Book represents an uploaded book.
type Book struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title" validate:"required,min=1,max=200"`
	Author      string    `json:"author" db:"author" validate:"required,min=1,max=100"`
	Description *string   `json:"description,omitempty" db:"description" validate:"omitempty,max=2000"`
	CoverURL    *string   `json:"cover_url,omitempty" db:"cover_url"`
	FileURL     *string   `json:"file_url,omitempty" db:"file_url"`
	IsPrivate   bool      `json:"is_private" db:"is_private"`
	ViewCount   int64     `json:"view_count" db:"view_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields
	OwnerUsername string  `json:"owner_username,omitempty" db:"owner_username"`
	AvgRating     float64 `json:"avg_rating" db:"avg_rating"`
	RatingCount   int     `json:"rating_count" db:"rating_count"`
	CommentCount  int     `json:"comment_count" db:"comment_count"`
}

// IsOwnedBy reports whether the book belongs to the given user.
func (b *Book) IsOwnedBy(userID int64) bool {
	return b.UserID == userID
}

// BookSort enumerates the accepted values of the list sort_by parameter.
const (
	BookSortDate   = "date"
	BookSortViews  = "views"
	BookSortRating = "rating"
)

// ===============================
// COMMENT MODELS
// ===============================

// Comment represents a comment on a book. Threads are flattened to a
// single level: a comment either has no parent (top level) or points at a
// top-level parent, with ChildID recording which reply it answered.
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	BookID    int64     `json:"book_id" db:"book_id"`
	UserID    *int64    `json:"user_id,omitempty" db:"user_id"`
	Content   string    `json:"content" db:"content" validate:"required,min=1,max=500"`
	ParentID  *int64    `json:"parent,omitempty" db:"parent_id"`
	ChildID   *int64    `json:"child,omitempty" db:"child_id"`
	IsEdited  bool      `json:"is_edited" db:"is_edited"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields
	AuthorUsername *string `json:"author_username,omitempty" db:"author_username"`
	AuthorAvatar   *string `json:"author_avatar,omitempty" db:"author_avatar"`

	// Computed fields
	ReplyCount int        `json:"reply_count" db:"-"`
	Replies    []*Comment `json:"replies,omitempty" db:"-"`
}

// IsParent reports whether the comment is a top-level comment.
func (c *Comment) IsParent() bool {
	return c.ParentID == nil
}

// IsAuthoredBy reports whether the comment was written by the given user.
func (c *Comment) IsAuthoredBy(userID int64) bool {
	return c.UserID != nil && *c.UserID == userID
}

// ===============================
// RATING MODELS
// ===============================

// Rating represents one user's score for one book. At most one row exists
// per (user, book) pair.
type Rating struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	BookID    int64     `json:"book_id" db:"book_id"`
	Score     int       `json:"score" db:"score" validate:"required,min=1,max=5"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RatingSummary aggregates all ratings of a book.
type RatingSummary struct {
	BookID  int64       `json:"book_id"`
	Total   int         `json:"total"`
	Mean    float64     `json:"mean"`
	Buckets map[int]int `json:"buckets"`
}

// ===============================
// FRIEND MODELS
// ===============================

// FriendRequest represents a pending or accepted friendship request.
// Only one row may exist per ordered (from, to) pair.
type FriendRequest struct {
	ID         int64     `json:"id" db:"id"`
	FromUserID int64     `json:"from_user" db:"from_user_id"`
	ToUserID   int64     `json:"to_user" db:"to_user_id"`
	Accepted   bool      `json:"accepted" db:"accepted"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	FromUsername string `json:"from_username,omitempty" db:"from_username"`
	ToUsername   string `json:"to_username,omitempty" db:"to_username"`
}

// Involves reports whether the given user is either endpoint of the request.
func (fr *FriendRequest) Involves(userID int64) bool {
	return fr.FromUserID == userID || fr.ToUserID == userID
}

// Friend represents an accepted friendship edge. A single edge is stored,
// owned by the user who accepted the request; queries treat it as symmetric.
type Friend struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user" db:"user_id"`
	FriendID  int64     `json:"friend" db:"friend_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Joined profile of the other party, resolved per caller.
	FriendUsername string  `json:"friend_username,omitempty" db:"friend_username"`
	FriendAvatar   *string `json:"friend_avatar,omitempty" db:"friend_avatar"`
}

// OtherUser returns the endpoint that is not the given user.
func (f *Friend) OtherUser(userID int64) int64 {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// ===============================
// MESSAGE MODELS
// ===============================

// Message represents a direct message between two users.
type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   int64     `json:"sender" db:"sender_id"`
	ReceiverID int64     `json:"receiver" db:"receiver_id"`
	Body       string    `json:"body" db:"body" validate:"required,min=1,max=1000"`
	IsRead     bool      `json:"is_read" db:"is_read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	SenderUsername   string `json:"sender_username,omitempty" db:"sender_username"`
	ReceiverUsername string `json:"receiver_username,omitempty" db:"receiver_username"`
}

// ===============================
// PAGINATION
// ===============================

// PaginationParams carries offset pagination inputs.
type PaginationParams struct {
	Page     int `json:"page" validate:"min=1"`
	PageSize int `json:"page_size" validate:"min=1,max=100"`
}

// Normalize clamps pagination values to sane defaults.
func (p *PaginationParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

// Offset returns the SQL offset for the current page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PaginationMeta describes one page of a paginated response.
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	ItemsPerPage int   `json:"items_per_page"`
	TotalItems   int64 `json:"total_items"`
	TotalPages   int   `json:"total_pages"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

// PaginatedResponse wraps a page of results with its pagination metadata.
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Filters    map[string]any `json:"filters,omitempty"`
}

// NewPaginationMeta computes page metadata from totals.
func NewPaginationMeta(params PaginationParams, totalItems int64) PaginationMeta {
	totalPages := int((totalItems + int64(params.PageSize) - 1) / int64(params.PageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	return PaginationMeta{
		CurrentPage:  params.Page,
		ItemsPerPage: params.PageSize,
		TotalItems:   totalItems,
		TotalPages:   totalPages,
		HasNext:      params.Page < totalPages,
		HasPrev:      params.Page > 1,
	}
}
