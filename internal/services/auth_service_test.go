package services

import (
	"context"
	"testing"
	"time"

	"bookhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeEmailService struct {
	verifications []string
	resets        []string
}

func (f *fakeEmailService) SendVerificationEmail(ctx context.Context, email, token string) error {
	f.verifications = append(f.verifications, email)
	return nil
}

func (f *fakeEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	f.resets = append(f.resets, email)
	return nil
}

func newAuthServiceForTest(t *testing.T, userRepo *fakeUserRepo, sessionRepo *fakeSessionRepo, tokenRepo *fakeTokenRepo, emailSvc *fakeEmailService) AuthService {
	t.Helper()
	if emailSvc == nil {
		emailSvc = &fakeEmailService{}
	}
	svc, err := NewAuthService(userRepo, sessionRepo, tokenRepo, emailSvc, nil, &AuthServiceConfig{
		JWTSecret:      "test-secret-key-for-unit-tests",
		AccessTokenTTL: 15 * time.Minute,
		SessionTTL:     time.Hour,
		BCryptCost:     bcrypt.MinCost,
	}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

// newAuthServiceWithCache builds the service around a fake cache so tests
// can watch claim evictions.
func newAuthServiceWithCache(t *testing.T, sessionRepo *fakeSessionRepo, c *fakeCache) AuthService {
	t.Helper()
	svc, err := NewAuthService(&fakeUserRepo{}, sessionRepo, &fakeTokenRepo{}, &fakeEmailService{}, c, &AuthServiceConfig{
		JWTSecret:      "test-secret-key-for-unit-tests",
		AccessTokenTTL: 15 * time.Minute,
		SessionTTL:     time.Hour,
		BCryptCost:     bcrypt.MinCost,
	}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	userRepo := &fakeUserRepo{
		getByUsername: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username}, nil
		},
	}
	svc := newAuthServiceForTest(t, userRepo, &fakeSessionRepo{}, &fakeTokenRepo{}, nil)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "supersecret",
	})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestRegister_SendsVerificationEmail(t *testing.T) {
	userRepo := &fakeUserRepo{
		create: func(ctx context.Context, user *models.User) error {
			user.ID = 1
			return nil
		},
	}
	emailSvc := &fakeEmailService{}
	svc := newAuthServiceForTest(t, userRepo, &fakeSessionRepo{}, &fakeTokenRepo{}, emailSvc)

	user, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, []string{"reader@example.com"}, emailSvc.verifications)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := &fakeUserRepo{
		getByUsername: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username, PasswordHash: hashedPassword(t, "correct")}, nil
		},
	}
	svc := newAuthServiceForTest(t, userRepo, &fakeSessionRepo{}, &fakeTokenRepo{}, nil)

	_, err := svc.Login(context.Background(), &LoginRequest{Username: "reader", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, IsUnauthorizedError(err))
}

func TestLogin_ThenVerifyToken(t *testing.T) {
	userRepo := &fakeUserRepo{
		getByUsername: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{
				ID:           1,
				Username:     username,
				Email:        "reader@example.com",
				PasswordHash: hashedPassword(t, "supersecret"),
			}, nil
		},
	}
	sessions := map[string]*models.Session{}
	sessionRepo := &fakeSessionRepo{
		create: func(ctx context.Context, session *models.Session) error {
			session.ID = int64(len(sessions) + 1)
			sessions[session.Token] = session
			return nil
		},
		getByToken: func(ctx context.Context, token string) (*models.Session, error) {
			return sessions[token], nil
		},
	}
	svc := newAuthServiceForTest(t, userRepo, sessionRepo, &fakeTokenRepo{}, nil)

	resp, err := svc.Login(context.Background(), &LoginRequest{Username: "reader", Password: "supersecret"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.VerifyToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "reader", claims.Username)
	assert.NotEmpty(t, claims.SessionID)
	assert.WithinDuration(t, resp.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestVerifyToken_DeadSession(t *testing.T) {
	userRepo := &fakeUserRepo{
		getByUsername: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username, PasswordHash: hashedPassword(t, "supersecret")}, nil
		},
	}
	// Sessions are never persisted, so a syntactically valid token has no
	// live session behind it.
	svc := newAuthServiceForTest(t, userRepo, &fakeSessionRepo{}, &fakeTokenRepo{}, nil)

	resp, err := svc.Login(context.Background(), &LoginRequest{Username: "reader", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(context.Background(), resp.AccessToken)
	require.Error(t, err)
	assert.True(t, IsUnauthorizedError(err))
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc := newAuthServiceForTest(t, &fakeUserRepo{}, &fakeSessionRepo{}, &fakeTokenRepo{}, nil)

	_, err := svc.VerifyToken(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.True(t, IsUnauthorizedError(err))
}

func TestRefreshToken_RotatesSession(t *testing.T) {
	userRepo := &fakeUserRepo{
		getByID: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Username: "reader", Email: "reader@example.com"}, nil
		},
	}
	deletedTokens := []string{}
	sessionRepo := &fakeSessionRepo{
		getByRefreshToken: func(ctx context.Context, refreshToken string) (*models.Session, error) {
			if refreshToken != "old-refresh" {
				return nil, nil
			}
			return &models.Session{
				ID:           1,
				UserID:       1,
				Token:        "old-access",
				RefreshToken: "old-refresh",
				ExpiresAt:    time.Now().Add(time.Hour),
			}, nil
		},
		deleteByToken: func(ctx context.Context, token string) error {
			deletedTokens = append(deletedTokens, token)
			return nil
		},
	}
	svc := newAuthServiceForTest(t, userRepo, sessionRepo, &fakeTokenRepo{}, nil)

	resp, err := svc.RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.NotEqual(t, "old-refresh", resp.RefreshToken, "refresh must rotate the refresh token")
	assert.Contains(t, deletedTokens, "old-access", "the old session must be revoked")
}

func TestRefreshToken_Expired(t *testing.T) {
	sessionRepo := &fakeSessionRepo{
		getByRefreshToken: func(ctx context.Context, refreshToken string) (*models.Session, error) {
			return &models.Session{
				ID:           1,
				UserID:       1,
				RefreshToken: refreshToken,
				ExpiresAt:    time.Now().Add(-time.Minute),
			}, nil
		},
	}
	svc := newAuthServiceForTest(t, &fakeUserRepo{}, sessionRepo, &fakeTokenRepo{}, nil)

	_, err := svc.RefreshToken(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, IsUnauthorizedError(err))
}

// An email action for an address nobody registered must look exactly like
// success, so the endpoint cannot be used to enumerate accounts.
func TestRequestEmailAction_UnknownAddress(t *testing.T) {
	emailSvc := &fakeEmailService{}
	svc := newAuthServiceForTest(t, &fakeUserRepo{}, &fakeSessionRepo{}, &fakeTokenRepo{}, emailSvc)

	err := svc.RequestEmailAction(context.Background(), &EmailActionRequest{
		Email:  "nobody@example.com",
		Action: "reset",
	})
	require.NoError(t, err)
	assert.Empty(t, emailSvc.resets)
}

func TestRequestEmailAction_InvalidAction(t *testing.T) {
	svc := newAuthServiceForTest(t, &fakeUserRepo{}, &fakeSessionRepo{}, &fakeTokenRepo{}, nil)

	err := svc.RequestEmailAction(context.Background(), &EmailActionRequest{
		Email:  "reader@example.com",
		Action: "unsubscribe",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestResetPassword_RevokesSessions(t *testing.T) {
	var updatedHash string
	userRepo := &fakeUserRepo{
		updatePassword: func(ctx context.Context, userID int64, passwordHash string) error {
			updatedHash = passwordHash
			return nil
		},
	}
	revoked := false
	sessionRepo := &fakeSessionRepo{
		deleteByUserID: func(ctx context.Context, userID int64) ([]string, error) {
			assert.Equal(t, int64(1), userID)
			revoked = true
			return []string{"stale-access"}, nil
		},
	}
	tokenRepo := &fakeTokenRepo{
		consume: func(ctx context.Context, token, purpose string) (int64, error) {
			assert.Equal(t, "reset", purpose)
			return 1, nil
		},
	}
	svc := newAuthServiceForTest(t, userRepo, sessionRepo, tokenRepo, nil)

	err := svc.ResetPassword(context.Background(), &ResetPasswordRequest{
		Token:       "reset-token",
		NewPassword: "newsupersecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, updatedHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updatedHash), []byte("newsupersecret")))
	assert.True(t, revoked, "all sessions must be revoked after a reset")
}

func TestLogout_EvictsCachedClaims(t *testing.T) {
	c := newFakeCache()
	c.entries[ClaimsCacheKey("live-token")] = "cached-claims"
	svc := newAuthServiceWithCache(t, &fakeSessionRepo{}, c)

	require.NoError(t, svc.Logout(context.Background(), "live-token"))

	assert.False(t, c.Exists(context.Background(), ClaimsCacheKey("live-token")),
		"a logged-out token must not keep authenticating from the cache")
}

func TestRefreshToken_EvictsOldClaims(t *testing.T) {
	c := newFakeCache()
	c.entries[ClaimsCacheKey("old-access")] = "cached-claims"
	sessionRepo := &fakeSessionRepo{
		getByRefreshToken: func(ctx context.Context, refreshToken string) (*models.Session, error) {
			return &models.Session{
				ID:           1,
				UserID:       1,
				Token:        "old-access",
				RefreshToken: refreshToken,
				ExpiresAt:    time.Now().Add(time.Hour),
			}, nil
		},
	}
	svc, err := NewAuthService(
		&fakeUserRepo{
			getByID: func(ctx context.Context, id int64) (*models.User, error) {
				return &models.User{ID: id, Username: "frank", Email: "frank@example.com"}, nil
			},
		},
		sessionRepo, &fakeTokenRepo{}, &fakeEmailService{}, c,
		&AuthServiceConfig{
			JWTSecret:      "test-secret-key-for-unit-tests",
			AccessTokenTTL: 15 * time.Minute,
			SessionTTL:     time.Hour,
			BCryptCost:     bcrypt.MinCost,
		}, zap.NewNop())
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), "refresh-1")
	require.NoError(t, err)

	assert.False(t, c.Exists(context.Background(), ClaimsCacheKey("old-access")))
}

func TestResetPassword_EvictsCachedClaims(t *testing.T) {
	c := newFakeCache()
	c.entries[ClaimsCacheKey("phone-session")] = "cached-claims"
	c.entries[ClaimsCacheKey("laptop-session")] = "cached-claims"

	sessionRepo := &fakeSessionRepo{
		deleteByUserID: func(ctx context.Context, userID int64) ([]string, error) {
			return []string{"phone-session", "laptop-session"}, nil
		},
	}
	svc, err := NewAuthService(&fakeUserRepo{}, sessionRepo,
		&fakeTokenRepo{
			consume: func(ctx context.Context, token, purpose string) (int64, error) {
				return 1, nil
			},
		},
		&fakeEmailService{}, c,
		&AuthServiceConfig{
			JWTSecret:      "test-secret-key-for-unit-tests",
			AccessTokenTTL: 15 * time.Minute,
			SessionTTL:     time.Hour,
			BCryptCost:     bcrypt.MinCost,
		}, zap.NewNop())
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), &ResetPasswordRequest{
		Token:       "reset-token",
		NewPassword: "newsupersecret",
	})
	require.NoError(t, err)

	assert.False(t, c.Exists(context.Background(), ClaimsCacheKey("phone-session")))
	assert.False(t, c.Exists(context.Background(), ClaimsCacheKey("laptop-session")))
}
