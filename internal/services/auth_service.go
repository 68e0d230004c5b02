package services

import (
	"context"
	"fmt"
	"time"

	"bookhub/internal/cache"
	"bookhub/internal/models"
	"bookhub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Token purposes stored in auth_tokens
const (
	tokenPurposeVerify = "verify"
	tokenPurposeReset  = "reset"
)

// ClaimsCacheKey is the cache key under which verified claims for an access
// token are stored. The auth middleware fills it and session-ending
// operations evict it so a revoked token stops authenticating immediately.
func ClaimsCacheKey(token string) string {
	return "auth:claims:" + token
}

// AuthServiceConfig holds tunables for the auth service
type AuthServiceConfig struct {
	JWTSecret            string
	AccessTokenTTL       time.Duration
	SessionTTL           time.Duration
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration
	BCryptCost           int
}

// DefaultAuthServiceConfig returns sensible defaults
func DefaultAuthServiceConfig() *AuthServiceConfig {
	return &AuthServiceConfig{
		AccessTokenTTL:       15 * time.Minute,
		SessionTTL:           7 * 24 * time.Hour,
		VerificationTokenTTL: 24 * time.Hour,
		ResetTokenTTL:        time.Hour,
		BCryptCost:           bcrypt.DefaultCost,
	}
}

// jwtClaims is the signed content of an access token
type jwtClaims struct {
	UserID    int64  `json:"uid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// authService implements AuthService
type authService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	tokenRepo   repositories.TokenRepository
	emailSvc    EmailService
	cache       cache.Cache
	config      *AuthServiceConfig
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAuthService creates a new auth service. The cache may be nil; it is
// only used to evict verified claims when sessions end.
func NewAuthService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	tokenRepo repositories.TokenRepository,
	emailSvc EmailService,
	cacheInstance cache.Cache,
	config *AuthServiceConfig,
	logger *zap.Logger,
) (AuthService, error) {
	if config == nil || config.JWTSecret == "" {
		return nil, fmt.Errorf("auth service requires a JWT secret")
	}
	defaults := DefaultAuthServiceConfig()
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = defaults.AccessTokenTTL
	}
	if config.SessionTTL == 0 {
		config.SessionTTL = defaults.SessionTTL
	}
	if config.VerificationTokenTTL == 0 {
		config.VerificationTokenTTL = defaults.VerificationTokenTTL
	}
	if config.ResetTokenTTL == 0 {
		config.ResetTokenTTL = defaults.ResetTokenTTL
	}
	if config.BCryptCost == 0 {
		config.BCryptCost = defaults.BCryptCost
	}

	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		emailSvc:    emailSvc,
		cache:       cacheInstance,
		config:      config,
		validator:   validator.New(),
		logger:      logger,
	}, nil
}

// ===============================
// REGISTRATION & LOGIN
// ===============================

// Register creates a new account and kicks off email verification
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid registration data", err)
	}

	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err != nil {
		s.logger.Error("Failed to check username", zap.Error(err))
		return nil, NewInternalError("Failed to register")
	} else if existing != nil {
		return nil, EntityAlreadyExistsError("User", "username", req.Username)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err != nil {
		s.logger.Error("Failed to check email", zap.Error(err))
		return nil, NewInternalError("Failed to register")
	} else if existing != nil {
		return nil, EntityAlreadyExistsError("User", "email", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, NewInternalError("Failed to register")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("username", req.Username))
		return nil, NewInternalError("Failed to register")
	}

	if err := s.issueEmailToken(ctx, user, tokenPurposeVerify); err != nil {
		s.logger.Warn("Failed to send verification email",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
		)
	}

	s.logger.Info("User registered successfully",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return user, nil
}

// Login verifies credentials and opens a session
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Username and password are required", err)
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		s.logger.Error("Failed to load user for login", zap.Error(err))
		return nil, NewInternalError("Failed to log in")
	}
	if user == nil {
		return nil, NewUnauthorizedError("Invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Failed login attempt", zap.String("username", req.Username))
		return nil, NewUnauthorizedError("Invalid username or password")
	}

	resp, err := s.openSession(ctx, user, req.UserAgent, req.IPAddress)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastSeen(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to update last seen", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	s.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return resp, nil
}

// Logout invalidates the session holding the given access token
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		if repoNotFound(err) {
			return NewUnauthorizedError("Invalid token")
		}
		s.logger.Error("Failed to delete session", zap.Error(err))
		return NewInternalError("Failed to log out")
	}
	s.evictClaims(ctx, token)
	return nil
}

// evictClaims drops the cached verified claims for an access token. Must
// run whenever a session dies before its natural expiry.
func (s *authService) evictClaims(ctx context.Context, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, ClaimsCacheKey(token)); err != nil {
		s.logger.Warn("Failed to evict cached claims", zap.Error(err))
	}
}

// ===============================
// TOKEN LIFECYCLE
// ===============================

// RefreshToken rotates the session: the old session row is replaced and a
// fresh access token issued.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, NewUnauthorizedError("Refresh token is required")
	}

	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Error("Failed to load session by refresh token", zap.Error(err))
		return nil, NewInternalError("Failed to refresh token")
	}
	if session == nil || session.IsExpired() {
		return nil, NewUnauthorizedError("Invalid or expired refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		s.logger.Error("Failed to load session user", zap.Error(err), zap.Int64("user_id", session.UserID))
		return nil, NewInternalError("Failed to refresh token")
	}
	if user == nil {
		return nil, NewUnauthorizedError("Invalid or expired refresh token")
	}

	if err := s.sessionRepo.DeleteByToken(ctx, session.Token); err != nil && !repoNotFound(err) {
		s.logger.Warn("Failed to delete rotated session", zap.Error(err))
	}
	s.evictClaims(ctx, session.Token)

	return s.openSession(ctx, user, session.UserAgent, session.IPAddress)
}

// VerifyToken checks signature, expiry and session liveness of an access
// token and returns its claims.
func (s *authService) VerifyToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, NewUnauthorizedError("Invalid or expired token")
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		s.logger.Error("Failed to load session", zap.Error(err))
		return nil, NewInternalError("Failed to verify token")
	}
	if session == nil || session.IsExpired() {
		return nil, NewUnauthorizedError("Session is no longer active")
	}

	return &TokenClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Email:     claims.Email,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ===============================
// EMAIL VERIFICATION & PASSWORD RESET
// ===============================

// RequestEmailAction starts an email-driven flow: "verify" re-sends the
// account verification link, "reset" begins a password reset. An unknown
// address is not reported back to the caller.
func (s *authService) RequestEmailAction(ctx context.Context, req *EmailActionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return NewValidationError("Invalid action", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to load user by email", zap.Error(err))
		return NewInternalError("Failed to process request")
	}
	if user == nil {
		s.logger.Info("Email action requested for unknown address", zap.String("action", req.Action))
		return nil
	}

	purpose := tokenPurposeVerify
	if req.Action == "reset" {
		purpose = tokenPurposeReset
	}
	if err := s.issueEmailToken(ctx, user, purpose); err != nil {
		s.logger.Error("Failed to issue email token", zap.Error(err), zap.Int64("user_id", user.ID))
		return NewInternalError("Failed to process request")
	}
	return nil
}

// ConfirmEmail marks the account verified using an emailed token
func (s *authService) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return NewValidationError("Token is required", nil)
	}

	userID, err := s.tokenRepo.Consume(ctx, token, tokenPurposeVerify)
	if err != nil {
		if repoNotFound(err) {
			return NewValidationError("Invalid or expired verification token", nil)
		}
		s.logger.Error("Failed to consume verification token", zap.Error(err))
		return NewInternalError("Failed to verify email")
	}

	if err := s.userRepo.SetVerified(ctx, userID); err != nil {
		s.logger.Error("Failed to mark user verified", zap.Error(err), zap.Int64("user_id", userID))
		return NewInternalError("Failed to verify email")
	}

	s.logger.Info("Email verified", zap.Int64("user_id", userID))
	return nil
}

// ResetPassword completes a password reset and revokes every open session
func (s *authService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return NewValidationError("Invalid reset data", err)
	}

	userID, err := s.tokenRepo.Consume(ctx, req.Token, tokenPurposeReset)
	if err != nil {
		if repoNotFound(err) {
			return NewValidationError("Invalid or expired reset token", nil)
		}
		s.logger.Error("Failed to consume reset token", zap.Error(err))
		return NewInternalError("Failed to reset password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.config.BCryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return NewInternalError("Failed to reset password")
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		s.logger.Error("Failed to update password", zap.Error(err), zap.Int64("user_id", userID))
		return NewInternalError("Failed to reset password")
	}

	revoked, err := s.sessionRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to revoke sessions after reset", zap.Error(err), zap.Int64("user_id", userID))
	}
	for _, token := range revoked {
		s.evictClaims(ctx, token)
	}

	s.logger.Info("Password reset completed", zap.Int64("user_id", userID))
	return nil
}

// ===============================
// INTERNALS
// ===============================

// openSession issues an access token and persists the backing session row
func (s *authService) openSession(ctx context.Context, user *models.User, userAgent, ipAddress *string) (*AuthResponse, error) {
	sessionID, err := uuid.NewV4()
	if err != nil {
		return nil, NewInternalError("Failed to open session")
	}
	refreshUUID, err := uuid.NewV4()
	if err != nil {
		return nil, NewInternalError("Failed to open session")
	}

	now := time.Now()
	accessExpiry := now.Add(s.config.AccessTokenTTL)

	claims := &jwtClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return nil, NewInternalError("Failed to open session")
	}

	session := &models.Session{
		UserID:       user.ID,
		Token:        accessToken,
		RefreshToken: refreshUUID.String(),
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
		ExpiresAt:    now.Add(s.config.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to persist session", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil, NewInternalError("Failed to open session")
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

// issueEmailToken creates a one-time token and mails it for the purpose
func (s *authService) issueEmailToken(ctx context.Context, user *models.User, purpose string) error {
	token, err := uuid.NewV4()
	if err != nil {
		return err
	}

	ttl := s.config.VerificationTokenTTL
	if purpose == tokenPurposeReset {
		ttl = s.config.ResetTokenTTL
	}
	if err := s.tokenRepo.Create(ctx, user.ID, token.String(), purpose, time.Now().Add(ttl)); err != nil {
		return err
	}

	if purpose == tokenPurposeReset {
		return s.emailSvc.SendPasswordResetEmail(ctx, user.Email, token.String())
	}
	return s.emailSvc.SendVerificationEmail(ctx, user.Email, token.String())
}
