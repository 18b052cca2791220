package model

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents a user account in the system
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the payload for public registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Phone    string `json:"phone" binding:"required,min=5,max=20"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

// LoginRequest is the payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

// CreateUserRequest is the payload for admin user creation.
// Unlike registration the role may be supplied; it defaults to USER.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Phone    string `json:"phone" binding:"required,min=5,max=20"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN USER"`
}

// UpdateUserRequest is a partial patch for an existing user.
// There is deliberately no role field: a role key in the request body is
// dropped during decoding, so no caller can change a role through update.
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email *string `json:"email" binding:"omitempty,email,max=100"`
	Phone *string `json:"phone" binding:"omitempty,min=5,max=20"`
}
