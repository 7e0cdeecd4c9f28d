package users

import (
	"strings"
	"time"
)

// User represents an admin user account.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName returns the full name, falling back to the email address.
func (u User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Email
}

// Choice is a user option rendered in filter forms.
type Choice struct {
	ID    int64
	Label string
}

// GetID returns the user id.
func (u *User) GetID() int64 {
	return u.ID
}

// IsSuperUser reports whether the user bypasses permission checks.
func (u *User) IsSuperUser() bool {
	return u.IsSuperuser
}

// Active reports whether the account may sign in and act.
func (u *User) Active() bool {
	return u.IsActive
}
