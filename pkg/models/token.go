package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PasswordResetToken is a short-lived single-use token. Only the SHA-256 hash
// is stored; the raw token leaves the system exactly once, in the reset email.
type PasswordResetToken struct {
	bun.BaseModel `bun:"table:password_reset_tokens,alias:prt"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	UserID    int       `bun:",nullzero" json:"user_id"`
	TokenHash string    `bun:",nullzero" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingRegistration holds a signup awaiting email verification. The user row
// is only created once the emailed token is presented; the pending row is
// deleted on consumption or expiry.
type PendingRegistration struct {
	bun.BaseModel `bun:"table:pending_registrations,alias:pr"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	Email        string    `bun:",nullzero" json:"email"`
	Name         string    `bun:",nullzero" json:"name"`
	DisplayName  *string   `json:"display_name"`
	PasswordHash string    `json:"-"`
	TokenHash    string    `bun:",nullzero" json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
