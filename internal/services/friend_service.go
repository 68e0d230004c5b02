package services

import (
	"context"

	"bookhub/internal/models"
	"bookhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// friendService implements FriendService
type friendService struct {
	friendRepo repositories.FriendRepository
	userRepo   repositories.UserRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewFriendService creates a new friend service
func NewFriendService(
	friendRepo repositories.FriendRepository,
	userRepo repositories.UserRepository,
	logger *zap.Logger,
) FriendService {
	return &friendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		validator:  validator.New(),
		logger:     logger,
	}
}

// SendRequest creates a friend request. The reverse direction is checked
// first: an accepted reverse request means the pair are already friends,
// a pending one means the other user got there first. A duplicate of the
// same direction is rejected as already sent.
func (s *friendService) SendRequest(ctx context.Context, req *SendFriendRequestRequest) (*models.FriendRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid friend request", err)
	}
	if req.FromUserID == req.ToUserID {
		return nil, NewValidationError("You cannot send a friend request to yourself", nil)
	}

	recipient, err := s.userRepo.GetByID(ctx, req.ToUserID)
	if err != nil {
		s.logger.Error("Failed to load recipient", zap.Error(err), zap.Int64("to_user_id", req.ToUserID))
		return nil, NewInternalError("Failed to send friend request")
	}
	if recipient == nil {
		return nil, NewValidationError("Invalid user ID", nil)
	}

	reverse, err := s.friendRepo.GetRequestBetween(ctx, req.ToUserID, req.FromUserID)
	if err != nil {
		s.logger.Error("Failed to check reverse friend request", zap.Error(err))
		return nil, NewInternalError("Failed to send friend request")
	}
	if reverse != nil {
		if reverse.Accepted {
			return nil, NewConflictError("Friend request already accepted", "FRIEND_REQUEST_ACCEPTED")
		}
		return nil, NewConflictError("Friend request already sent", "FRIEND_REQUEST_PENDING")
	}

	existing, err := s.friendRepo.GetRequestBetween(ctx, req.FromUserID, req.ToUserID)
	if err != nil {
		s.logger.Error("Failed to check existing friend request", zap.Error(err))
		return nil, NewInternalError("Failed to send friend request")
	}
	if existing != nil {
		return nil, NewConflictError("Friend request already sent", "FRIEND_REQUEST_PENDING")
	}

	request := &models.FriendRequest{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
	}
	if err := s.friendRepo.CreateRequest(ctx, request); err != nil {
		s.logger.Error("Failed to create friend request",
			zap.Error(err),
			zap.Int64("from_user_id", req.FromUserID),
			zap.Int64("to_user_id", req.ToUserID),
		)
		return nil, NewInternalError("Failed to send friend request")
	}
	return request, nil
}

// CancelRequest withdraws an outgoing request or declines an incoming one
// addressed through the friend-requests resource; either endpoint may
// remove the row.
func (s *friendService) CancelRequest(ctx context.Context, requestID, userID int64) error {
	return s.removeRequest(ctx, requestID, userID, false)
}

// DeclineRequest removes a pending request; only the recipient may decline.
func (s *friendService) DeclineRequest(ctx context.Context, requestID, userID int64) error {
	return s.removeRequest(ctx, requestID, userID, true)
}

func (s *friendService) removeRequest(ctx context.Context, requestID, userID int64, recipientOnly bool) error {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		s.logger.Error("Failed to load friend request", zap.Error(err), zap.Int64("request_id", requestID))
		return NewInternalError("Failed to remove friend request")
	}
	if request == nil {
		return NewNotFoundError("Friend request does not exist")
	}
	if recipientOnly {
		if request.ToUserID != userID {
			return NewNotFoundError("Friend request does not exist")
		}
	} else if !request.Involves(userID) {
		return NewForbiddenError("You are not part of this friend request")
	}

	if err := s.friendRepo.DeleteRequest(ctx, requestID); err != nil {
		if repoNotFound(err) {
			return NewNotFoundError("Friend request does not exist")
		}
		s.logger.Error("Failed to delete friend request", zap.Error(err), zap.Int64("request_id", requestID))
		return NewInternalError("Failed to remove friend request")
	}

	s.logger.Info("Friend request removed",
		zap.Int64("request_id", requestID),
		zap.Int64("user_id", userID),
	)
	return nil
}

// AcceptRequest accepts a pending request addressed to the caller. Any
// action other than "accept" is invalid. Marking the request accepted and
// creating the friendship edge happen in one transaction.
func (s *friendService) AcceptRequest(ctx context.Context, req *FriendRequestActionRequest) (*models.Friend, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid action", err)
	}
	if req.Action != "accept" {
		return nil, NewValidationError("Invalid action", nil)
	}

	request, err := s.friendRepo.GetRequestByID(ctx, req.RequestID)
	if err != nil {
		s.logger.Error("Failed to load friend request", zap.Error(err), zap.Int64("request_id", req.RequestID))
		return nil, NewInternalError("Failed to accept friend request")
	}
	// The request must exist, be addressed to the caller and still be
	// pending; anything else is indistinguishable from a missing request.
	if request == nil || request.ToUserID != req.UserID || request.Accepted {
		return nil, NewNotFoundError("Friend request does not exist")
	}

	friend, err := s.friendRepo.AcceptRequest(ctx, req.RequestID, req.UserID)
	if err != nil {
		if repoNotFound(err) {
			return nil, NewNotFoundError("Friend request does not exist")
		}
		s.logger.Error("Failed to accept friend request", zap.Error(err), zap.Int64("request_id", req.RequestID))
		return nil, NewInternalError("Failed to accept friend request")
	}

	s.logger.Info("Friend request accepted",
		zap.Int64("request_id", req.RequestID),
		zap.Int64("user_id", req.UserID),
		zap.Int64("friend_user_id", friend.FriendID),
	)
	return friend, nil
}

// ListIncomingRequests returns pending requests addressed to the caller
func (s *friendService) ListIncomingRequests(ctx context.Context, userID int64) ([]*models.FriendRequest, error) {
	requests, err := s.friendRepo.ListIncoming(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list incoming requests", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("Failed to list friend requests")
	}
	return requests, nil
}

// ListOutgoingRequests returns pending requests sent by the caller
func (s *friendService) ListOutgoingRequests(ctx context.Context, userID int64) ([]*models.FriendRequest, error) {
	requests, err := s.friendRepo.ListOutgoing(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list outgoing requests", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("Failed to list friend requests")
	}
	return requests, nil
}

// ListFriends returns the caller's friendships from either side of the edge
func (s *friendService) ListFriends(ctx context.Context, userID int64) ([]*models.Friend, error) {
	friends, err := s.friendRepo.ListFriends(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list friends", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("Failed to list friends")
	}
	return friends, nil
}

// Unfriend deletes a friendship edge; either endpoint may remove it and
// the relation disappears for both.
func (s *friendService) Unfriend(ctx context.Context, friendID, userID int64) error {
	friend, err := s.friendRepo.GetFriendByID(ctx, friendID)
	if err != nil {
		s.logger.Error("Failed to load friendship", zap.Error(err), zap.Int64("friend_id", friendID))
		return NewInternalError("Failed to remove friend")
	}
	if friend == nil {
		return NewNotFoundError("No friend with such id")
	}
	if friend.UserID != userID && friend.FriendID != userID {
		return NewForbiddenError("You are not part of this friendship")
	}

	if err := s.friendRepo.DeleteFriend(ctx, friendID); err != nil {
		if repoNotFound(err) {
			return NewNotFoundError("No friend with such id")
		}
		s.logger.Error("Failed to delete friendship", zap.Error(err), zap.Int64("friend_id", friendID))
		return NewInternalError("Failed to remove friend")
	}

	s.logger.Info("Friend removed",
		zap.Int64("friend_id", friendID),
		zap.Int64("user_id", userID),
	)
	return nil
}
