package services

import (
	"fmt"

	"bookhub/internal/cache"
	"bookhub/internal/config"
	"bookhub/internal/database"
	"bookhub/internal/repositories"

	"go.uber.org/zap"
)

// RepositoryCollection aggregates every repository used by the services
type RepositoryCollection struct {
	User    repositories.UserRepository
	Session repositories.SessionRepository
	Token   repositories.TokenRepository
	Book    repositories.BookRepository
	Comment repositories.CommentRepository
	Rating  repositories.RatingRepository
	Friend  repositories.FriendRepository
	Message repositories.MessageRepository
}

// ServiceCollection aggregates every service, wired onto a shared set of
// repositories.
type ServiceCollection struct {
	Repositories *RepositoryCollection

	Auth    AuthService
	User    UserService
	Book    BookService
	Comment CommentService
	Rating  RatingService
	Friend  FriendService
	Message MessageService
	Email   EmailService
}

// NewServiceCollection wires repositories and services onto the database,
// cache and configuration. notifier may be nil when live message delivery
// is disabled.
func NewServiceCollection(
	db *database.Manager,
	cacheInstance cache.Cache,
	cfg *config.Config,
	notifier MessageNotifier,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if cacheInstance == nil {
		return nil, fmt.Errorf("cache is required")
	}

	repos := &RepositoryCollection{
		User:    repositories.NewUserRepository(db, logger),
		Session: repositories.NewSessionRepository(db, logger),
		Token:   repositories.NewTokenRepository(db, logger),
		Book:    repositories.NewBookRepository(db, logger),
		Comment: repositories.NewCommentRepository(db, logger),
		Rating:  repositories.NewRatingRepository(db, logger),
		Friend:  repositories.NewFriendRepository(db, logger),
		Message: repositories.NewMessageRepository(db, logger),
	}

	emailSvc := NewEmailService(cfg.Server.BaseURL, logger)

	authSvc, err := NewAuthService(
		repos.User,
		repos.Session,
		repos.Token,
		emailSvc,
		cacheInstance,
		&AuthServiceConfig{
			JWTSecret:      cfg.Auth.JWTSecret,
			AccessTokenTTL: cfg.Auth.AccessTokenTTL,
			SessionTTL:     cfg.Auth.SessionTTL,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	collection := &ServiceCollection{
		Repositories: repos,
		Auth:         authSvc,
		User:         NewUserService(repos.User, repos.Session, logger),
		Book:         NewBookService(repos.Book, repos.User, logger),
		Comment:      NewCommentService(repos.Comment, repos.Book, logger),
		Rating:       NewRatingService(repos.Rating, repos.Book, cacheInstance, nil, logger),
		Friend:       NewFriendService(repos.Friend, repos.User, logger),
		Message:      NewMessageService(repos.Message, repos.User, notifier, logger),
		Email:        emailSvc,
	}

	logger.Info("Service collection initialized")
	return collection, nil
}
