package services

import (
	"context"

	"go.uber.org/zap"
)

// EmailService delivers transactional email. The default implementation
// logs the delivery; production wires a real provider behind the same
// interface.
type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

type emailService struct {
	baseURL string
	logger  *zap.Logger
}

// NewEmailService creates a new email service
func NewEmailService(baseURL string, logger *zap.Logger) EmailService {
	return &emailService{
		baseURL: baseURL,
		logger:  logger,
	}
}

// SendVerificationEmail sends an email verification link to the user
func (s *emailService) SendVerificationEmail(ctx context.Context, email, token string) error {
	s.logger.Info("Sending verification email",
		zap.String("email", email),
		zap.String("link", s.baseURL+"/verify-email?token="+token),
	)
	return nil
}

// SendPasswordResetEmail sends a password reset link to the user
func (s *emailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	s.logger.Info("Sending password reset email",
		zap.String("email", email),
		zap.String("link", s.baseURL+"/reset-password?token="+token),
	)
	return nil
}
