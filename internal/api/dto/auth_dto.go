package dto

import "time"

// RegisterRequest payload for self-registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// UserSummary is the public view of an account.
type UserSummary struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is returned when a session is opened.
type SessionResponse struct {
	User       UserSummary `json:"user"`
	ExpiresAt  time.Time   `json:"expires_at"`
	Persistent bool        `json:"persistent"`
	Redirect   string      `json:"redirect"`
}
