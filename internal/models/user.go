package models

import (
	"time"

	"github.com/desertthunder/foodgram/internal/shared"
)

// User is an account that authors recipes, keeps favorites and a cart, and follows other users.
type User struct {
	base
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	IsStaff   bool   `json:"is_staff"`
	deletedAt *time.Time
}

// NewUser creates a [User] with the given sequence number.
func NewUser(sequence int, email, username string) *User {
	return &User{base: newBase(sequence), Email: email, Username: username}
}

// DeletedAt returns when the user was soft-deleted, or nil.
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

// SetDeletedAt marks the user as soft-deleted.
func (u *User) SetDeletedAt(t *time.Time) { u.deletedAt = t }

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}

// Validate checks the user's fields against their tag constraints.
func (u *User) Validate() error {
	return shared.ValidateStruct(u)
}
