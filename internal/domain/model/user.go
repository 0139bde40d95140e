package model

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/quillhq/quill/internal/domain/auth"
)

const (
	maxUserNameLen = 64
	maxEmailLen    = 255
)

var userNameRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// User is the persisted user record. PasswordHash is empty for accounts
// created via federated login only.
type User struct {
	ID           string          `json:"id"           db:"id"`
	Email        string          `json:"email"        db:"email"`
	Name         string          `json:"name"         db:"name"`
	FirstName    string          `json:"firstName"    db:"first_name"`
	LastName     string          `json:"lastName"     db:"last_name"`
	PasswordHash string          `json:"password"     db:"password_hash"`
	Role         domainauth.Role `json:"role"         db:"role"`
	CreatedAt    time.Time       `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt"    db:"updated_at"`
}

// Principal derives the minimal session identity from the user record.
func (u *User) Principal() domainauth.Principal {
	return domainauth.Principal{UserID: u.ID, Role: u.Role}
}

// CreateUserRequest contains fields to create a new user.
// PasswordHash must already be hashed; plaintext never reaches the data layer.
type CreateUserRequest struct {
	Email        string
	Name         string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         domainauth.Role
}

// Validate checks the request fields. Role defaults to USER when empty.
func (r *CreateUserRequest) Validate() error {
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return errors.New("email is required and cannot be empty")
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return errors.New("email cannot exceed 255 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email must be a valid address")
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxUserNameLen {
		return errors.New("name cannot exceed 64 characters")
	}
	if !userNameRe.MatchString(name) {
		return errors.New(
			"name must start with a letter, digit, or underscore and contain only letters, digits, underscores, dots, or hyphens",
		)
	}

	if r.Role != "" && !r.Role.Valid() {
		return errors.New("role must be one of USER, ADMIN, GUEST")
	}
	return nil
}
