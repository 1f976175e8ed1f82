package domain

import "time"

// Status is the activation state of a user account.
type Status string

const (
	StatusActivated   Status = "ACTIVATED"
	StatusDeactivated Status = "DEACTIVATED"
)

// User represents an identity record. The email is unique among ACTIVATED
// users only; a deactivated account frees its address for re-registration.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActive reports whether the account may authenticate and hold tokens.
func (u *User) IsActive() bool {
	return u.Status == StatusActivated
}
