package service

import (
	"context"
	"testing"
	"time"

	"user_manager/internal/limiter"
	"user_manager/internal/model"
	"user_manager/internal/test"
	"user_manager/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(blockTime time.Duration) (AuthService, *test.MemoryUserRepository) {
	repo := test.NewMemoryUserRepository()
	jwtUtil := utils.NewJWTUtil("test-secret", time.Hour)
	lim := limiter.NewMemory(limiter.DefaultMaxAttempts, blockTime)
	return NewAuthService(repo, jwtUtil, lim), repo
}

func registerReq(email string) model.RegisterRequest {
	return model.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Phone:    "+595111222",
		Password: "password123",
	}
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := newAuthService(10 * time.Minute)

	user, err := svc.Register(context.Background(), registerReq("test@example.com"))

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role, "registration must never assign a role other than USER")
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(10 * time.Minute)

	_, err := svc.Register(context.Background(), registerReq("test@example.com"))
	require.NoError(t, err)

	// Same email with different name/phone/password still conflicts
	req := registerReq("test@example.com")
	req.Name = "Someone Else"
	req.Phone = "+595999999"
	req.Password = "otherpassword"
	_, err = svc.Register(context.Background(), req)

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newAuthService(10 * time.Minute)
	_, err := svc.Register(context.Background(), registerReq("test@example.com"))
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "10.0.0.1", model.LoginRequest{
		Email: "test@example.com", Password: "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "test@example.com", user.Email)
}

func TestAuthService_Login_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _ := newAuthService(10 * time.Minute)
	_, err := svc.Register(context.Background(), registerReq("test@example.com"))
	require.NoError(t, err)

	_, _, wrongPass := svc.Login(context.Background(), "10.0.0.1", model.LoginRequest{
		Email: "test@example.com", Password: "wrongpassword",
	})
	_, _, unknown := svc.Login(context.Background(), "10.0.0.1", model.LoginRequest{
		Email: "nobody@example.com", Password: "password123",
	})

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknown.Error(), "responses must not reveal whether the email exists")
}

func TestAuthService_Login_ThrottledAfterMaxFailures(t *testing.T) {
	svc, _ := newAuthService(10 * time.Minute)
	_, err := svc.Register(context.Background(), registerReq("test@example.com"))
	require.NoError(t, err)

	ip := "10.0.0.1"
	for i := 0; i < limiter.DefaultMaxAttempts; i++ {
		_, _, err := svc.Login(context.Background(), ip, model.LoginRequest{
			Email: "test@example.com", Password: "wrongpassword",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Correct credentials are rejected while the block lasts
	_, _, err = svc.Login(context.Background(), ip, model.LoginRequest{
		Email: "test@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// A different IP is unaffected
	_, _, err = svc.Login(context.Background(), "10.0.0.2", model.LoginRequest{
		Email: "test@example.com", Password: "password123",
	})
	assert.NoError(t, err)
}

func TestAuthService_Login_SucceedsAfterCooldown(t *testing.T) {
	svc, _ := newAuthService(30 * time.Millisecond)
	_, err := svc.Register(context.Background(), registerReq("test@example.com"))
	require.NoError(t, err)

	ip := "10.0.0.1"
	for i := 0; i < limiter.DefaultMaxAttempts; i++ {
		svc.Login(context.Background(), ip, model.LoginRequest{
			Email: "test@example.com", Password: "wrongpassword",
		})
	}
	_, _, err = svc.Login(context.Background(), ip, model.LoginRequest{
		Email: "test@example.com", Password: "password123",
	})
	require.ErrorIs(t, err, ErrTooManyAttempts)

	time.Sleep(50 * time.Millisecond)

	_, token, err := svc.Login(context.Background(), ip, model.LoginRequest{
		Email: "test@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAuthService_CurrentUser_Vanished(t *testing.T) {
	svc, repo := newAuthService(10 * time.Minute)
	user, err := svc.Register(context.Background(), registerReq("test@example.com"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), user.ID))

	_, err = svc.CurrentUser(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc, repo := newAuthService(10 * time.Minute)

	err := svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "+595000", "admin123")
	require.NoError(t, err)

	admin, err := repo.FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	// Idempotent on restart
	require.NoError(t, svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "+595000", "admin123"))
	users, _ := repo.FindAll(context.Background())
	assert.Len(t, users, 1)
}
