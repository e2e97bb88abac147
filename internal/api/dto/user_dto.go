package dto

import (
	"time"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateUserRequest payload for POST /users.
type CreateUserRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Area     string `json:"area"`
	Role     string `json:"role"`
}

// ChangePasswordRequest payload for PUT /users/:id/change-password.
type ChangePasswordRequest struct {
	NewPassword   string `json:"newPassword"`
	AdminPassword string `json:"adminPassword"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FullName  string      `json:"fullName"`
	Area      string      `json:"area"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// SessionResponse is the identity carried by the caller's session.
type SessionResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	Area     string      `json:"area"`
	Home     string      `json:"home,omitempty"`
}

// NewUserResponse maps a stored user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Area:      u.Area,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserList maps a slice of users.
func NewUserList(users []domain.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, NewUserResponse(&users[i]))
	}
	return items
}

// NewSessionResponse maps an identity; home is the role dashboard when known.
func NewSessionResponse(identity *domain.Identity, home string) SessionResponse {
	return SessionResponse{
		ID:       identity.UserID,
		Username: identity.Username,
		Role:     identity.Role,
		Area:     identity.Area,
		Home:     home,
	}
}
