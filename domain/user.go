package domain

import (
	"strconv"
	"time"
)

// User is the authenticated principal (customer or admin) acting in the current session.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired reports whether the identity carries an expiry at or before reference.
// A zero ExpiresAt never expires.
func (u *User) IsExpired(reference time.Time) bool {
	if u == nil {
		return true
	}
	if u.ExpiresAt.IsZero() {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !u.ExpiresAt.After(reference)
}

// PartitionKey returns the cart partition owned by u. Admin ids live in their own
// id space, so admin partitions carry a prefix.
func (u *User) PartitionKey() string {
	if u == nil {
		return GuestPartition
	}
	if u.IsAdmin {
		return "admin_" + strconv.FormatInt(u.ID, 10)
	}
	return strconv.FormatInt(u.ID, 10)
}

// Credentials is the login form for customers and admins alike.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up form for customers and admins.
type Registration struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
