package domain

import "time"

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username,omitempty"`
	Name         string `json:"name,omitempty"`
	Picture      string `json:"picture,omitempty"`
	GoogleID     string `json:"-"`
	PasswordHash string `json:"-"`
	Verified     bool   `json:"verified"`

	// At most one active verification code and one active reset code at a
	// time; both become unusable after ExpiresAt.
	VerificationCode          string    `json:"-"`
	VerificationCodeExpiresAt time.Time `json:"-"`
	ResetCode                 string    `json:"-"`
	ResetCodeExpiresAt        time.Time `json:"-"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
