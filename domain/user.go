package domain

import (
	"regexp"
	"strings"
	"time"
)

const (
	maxNameLen  = 50
	minPassword = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is an account owning tasks and notes. PasswordHash is never
// serialized to API responses.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ValidateRegistration checks the raw registration fields. The email is
// expected to be lowercased and trimmed by the caller before storage.
func ValidateRegistration(name, email, password string) error {
	var msgs []string
	name = strings.TrimSpace(name)
	if name == "" {
		msgs = append(msgs, "Name is required")
	} else if len(name) > maxNameLen {
		msgs = append(msgs, "Name cannot exceed 50 characters")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		msgs = append(msgs, "Email is required")
	} else if !emailPattern.MatchString(email) {
		msgs = append(msgs, "Please provide a valid email address")
	}
	if len(password) < minPassword {
		msgs = append(msgs, "Password must be at least 6 characters long")
	}
	return newValidationError(msgs)
}
