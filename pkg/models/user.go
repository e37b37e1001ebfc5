package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles, in increasing order of privilege.
const (
	RoleUser      = "user"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one of the known role names.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleLibrarian || role == RoleAdmin
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `bun:",nullzero" json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash
	Name         string    `bun:",nullzero" json:"name"`
	DisplayName  *string   `json:"display_name"`
	Role         string    `bun:",nullzero" json:"role"`
	Disabled     bool      `json:"disabled"`
	QRCodeData   string    `bun:"qr_code_data,nullzero" json:"qr_code_data,omitempty"`
}

// DisplayNameOrName returns the display name, falling back to the real name
// when no display name has been set.
func (u *User) DisplayNameOrName() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Name
}

// IsStaff reports whether the user holds a front-desk or administrator role.
func (u *User) IsStaff() bool {
	return u.Role == RoleLibrarian || u.Role == RoleAdmin
}
