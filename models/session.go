package models

import "time"

// Session is a refresh-token login. Access tokens are short lived and
// stateless; the session row is what logout and deactivation revoke.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
