package services

import (
	"context"

	"bookhub/internal/models"
	"bookhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// userService implements UserService
type userService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		validator:   validator.New(),
		logger:      logger,
	}
}

// GetUserByID retrieves a user's public profile
func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load user", zap.Error(err), zap.Int64("user_id", id))
		return nil, NewInternalError("Failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("User not found")
	}
	return user, nil
}

// UpdateProfile applies a partial profile update; nil fields are left
// unchanged.
func (s *userService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid profile data", err)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Failed to load user", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("Failed to update profile")
	}
	if user == nil {
		return nil, NewNotFoundError("User not found")
	}

	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("Failed to update profile")
	}

	s.logger.Info("Profile updated successfully", zap.Int64("user_id", user.ID))
	return user, nil
}

// DeleteAccount removes the user. Books, ratings, friend requests,
// friendships and sessions cascade; comments stay behind with the author
// cleared.
func (s *userService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if repoNotFound(err) {
			return NewNotFoundError("User not found")
		}
		s.logger.Error("Failed to delete account", zap.Error(err), zap.Int64("user_id", userID))
		return NewInternalError("Failed to delete account")
	}

	s.logger.Info("Account deleted", zap.Int64("user_id", userID))
	return nil
}
