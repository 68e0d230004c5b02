package services

import (
	"context"

	"bookhub/internal/models"
	"bookhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MessageNotifier pushes newly persisted messages to connected receivers.
// Delivery is best effort; persistence always happens first.
type MessageNotifier interface {
	NotifyMessage(ctx context.Context, message *models.Message)
}

// messageService implements MessageService
type messageService struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	notifier    MessageNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewMessageService creates a new message service. notifier may be nil.
func NewMessageService(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	notifier MessageNotifier,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		validator:   validator.New(),
		logger:      logger,
	}
}

// SendMessage persists a direct message and pushes it to the receiver's
// live connection when one is open.
func (s *messageService) SendMessage(ctx context.Context, req *SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid message", err)
	}
	if req.SenderID == req.ReceiverID {
		return nil, NewValidationError("You cannot message yourself", nil)
	}

	receiver, err := s.userRepo.GetByID(ctx, req.ReceiverID)
	if err != nil {
		s.logger.Error("Failed to load receiver", zap.Error(err), zap.Int64("receiver_id", req.ReceiverID))
		return nil, NewInternalError("Failed to send message")
	}
	if receiver == nil {
		return nil, NewNotFoundError("Receiver not found")
	}

	message := &models.Message{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		s.logger.Error("Failed to create message",
			zap.Error(err),
			zap.Int64("sender_id", req.SenderID),
			zap.Int64("receiver_id", req.ReceiverID),
		)
		return nil, NewInternalError("Failed to send message")
	}

	if s.notifier != nil {
		s.notifier.NotifyMessage(ctx, message)
	}
	return message, nil
}

// ListMyMessages returns every message the caller sent or received,
// oldest first.
func (s *messageService) ListMyMessages(ctx context.Context, userID int64) ([]*models.Message, error) {
	messages, err := s.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list messages", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("Failed to list messages")
	}
	return messages, nil
}

// ListConversation returns the thread with another user oldest first and
// marks their messages to the caller as read.
func (s *messageService) ListConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error) {
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		s.logger.Error("Failed to load conversation partner", zap.Error(err), zap.Int64("other_id", otherID))
		return nil, NewInternalError("Failed to list conversation")
	}
	if other == nil {
		return nil, NewNotFoundError("User not found")
	}

	messages, err := s.messageRepo.ListConversation(ctx, userID, otherID)
	if err != nil {
		s.logger.Error("Failed to list conversation", zap.Error(err),
			zap.Int64("user_id", userID), zap.Int64("other_id", otherID))
		return nil, NewInternalError("Failed to list conversation")
	}

	if err := s.messageRepo.MarkRead(ctx, userID, otherID); err != nil {
		s.logger.Warn("Failed to mark conversation read", zap.Error(err),
			zap.Int64("user_id", userID), zap.Int64("other_id", otherID))
	}
	return messages, nil
}
