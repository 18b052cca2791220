package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"user_manager/internal/limiter"
	"user_manager/internal/model"
	"user_manager/internal/repository"
	"user_manager/internal/utils"
)

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, ip string, req model.LoginRequest) (*model.User, string, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	EnsureAdmin(ctx context.Context, name, email, phone, password string) error
}

type authService struct {
	userRepo     repository.UserRepository
	jwtUtil      *utils.JWTUtil
	loginLimiter limiter.Limiter
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, loginLimiter limiter.Limiter) AuthService {
	return &authService{
		userRepo:     userRepo,
		jwtUtil:      jwtUtil,
		loginLimiter: loginLimiter,
	}
}

// Register creates a new user account. The role is always USER here; only
// the admin create endpoint may assign roles.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns the account plus a session token.
// The throttle gate runs before any credential work, and an unknown email is
// indistinguishable from a wrong password in the returned error.
func (s *authService) Login(ctx context.Context, ip string, req model.LoginRequest) (*model.User, string, error) {
	if err := s.loginLimiter.Check(ip); err != nil {
		return nil, "", ErrTooManyAttempts
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		s.loginLimiter.RecordFailure(ip)
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.loginLimiter.RecordFailure(ip)
		return nil, "", ErrInvalidCredentials
	}

	s.loginLimiter.RecordSuccess(ip)

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// CurrentUser resolves the authenticated identity against the store. The
// token is stateless, so the record may have vanished since it was issued.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error finding user by ID: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// EnsureAdmin seeds the admin account at startup if it does not exist yet
func (s *authService) EnsureAdmin(ctx context.Context, name, email, phone, password string) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}
	if existing != nil {
		return nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hashedPassword,
		Role:         model.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	log.Printf("Seeded admin account %s (ID: %s)", admin.Email, admin.ID)
	return nil
}
