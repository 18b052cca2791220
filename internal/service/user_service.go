package service

import (
	"context"
	"errors"
	"fmt"

	"user_manager/internal/model"
	"user_manager/internal/repository"
	"user_manager/internal/utils"
)

// ErrSelfDelete guards an admin against deleting their own account
var ErrSelfDelete = errors.New("cannot delete your own account")

// UserService provides user administration services
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, patch model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, callerID, id string) error
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// List returns all users, newest first
func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Create adds a user on behalf of an admin. Unlike registration the role
// may be specified; it defaults to USER when absent.
func (s *userService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
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

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Get retrieves a single user by ID
func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update applies a partial patch. An email change is re-checked for
// uniqueness excluding the record itself.
func (s *userService) Update(ctx context.Context, id string, patch model.UpdateUserRequest) (*model.User, error) {
	if patch.Email != nil {
		taken, err := s.userRepo.EmailTaken(ctx, *patch.Email, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	user, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user. An admin may not delete their own account.
func (s *userService) Delete(ctx context.Context, callerID, id string) error {
	if callerID == id {
		return ErrSelfDelete
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
