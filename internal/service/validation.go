package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/auth_service/internal/models"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func looksLikeEmail(s string) bool {
	return emailRe.MatchString(s)
}

type RegisterInput struct {
	Name      string
	Surname   string
	Login     string
	Email     string
	Password  string
	Role      string
	UserAgent string
}

type LoginInput struct {
	LoginOrEmail string
	Password     string
	UserAgent    string
}

func checkLen(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return invalid(field, fmt.Sprintf("must be between %d and %d characters", min, max))
	}
	return nil
}

// normalize trims and lowercases where needed and checks every field.
// The password is taken as is.
func (in RegisterInput) normalize() (RegisterInput, models.Role, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Login = strings.TrimSpace(in.Login)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	checks := []struct {
		field    string
		value    string
		min, max int
	}{
		{"name", in.Name, 3, 30},
		{"surname", in.Surname, 3, 30},
		{"login", in.Login, 3, 30},
		{"email", in.Email, 7, 50},
		{"pwd", in.Password, 5, 50},
	}
	for _, c := range checks {
		if err := checkLen(c.field, c.value, c.min, c.max); err != nil {
			return in, "", err
		}
	}
	if !looksLikeEmail(in.Email) {
		return in, "", invalid("email", "must be a valid email address")
	}
	if looksLikeEmail(in.Login) {
		return in, "", invalid("login", "must not be an email address")
	}

	role := models.RoleUser
	if r := strings.TrimSpace(in.Role); r != "" {
		role = models.Role(strings.ToLower(r))
	}
	switch {
	case !role.Valid():
		return in, "", invalid("role", "unknown role")
	case role == models.RoleAdmin:
		return in, "", invalid("role", "admin accounts cannot be self-registered")
	}

	return in, role, nil
}

func (in LoginInput) normalize() (LoginInput, error) {
	in.LoginOrEmail = strings.TrimSpace(in.LoginOrEmail)
	if err := checkLen("login_or_email", in.LoginOrEmail, 3, 50); err != nil {
		return in, err
	}
	if err := checkLen("pwd", in.Password, 5, 50); err != nil {
		return in, err
	}
	return in, nil
}

// ParseRole returns nil for an empty filter.
func ParseRole(s string) (*models.Role, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	role := models.Role(strings.ToLower(s))
	if !role.Valid() {
		return nil, invalid("role", "unknown role")
	}
	return &role, nil
}
