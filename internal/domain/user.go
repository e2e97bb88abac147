package domain

import "time"

// User is an account that can sign in, either a requester or an administrator.
type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Area         string
	Role         Role
	CreatedAt    time.Time
}

// Identity returns the session view of the user.
func (u *User) Identity() Identity {
	return Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		Area:     u.Area,
	}
}
