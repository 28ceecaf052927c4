package user

import (
	"errors"
	"strings"
	"time"

	"tally/internal/shared/validate"
)

var ErrDuplicateEmail = errors.New("a user with this email already exists")

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
}

// RegisterParams is the raw registration input before password hashing.
type RegisterParams struct {
	Email    string
	Name     string
	Password string
}

func (p *RegisterParams) Validate() validate.Errors {
	errs := validate.Errors{}

	if strings.TrimSpace(p.Email) == "" {
		errs.Add("email", "Email is required")
	} else if !validate.Email(p.Email) {
		errs.Add("email", "Email format is invalid")
	}

	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "Name is required")
	}

	if p.Password == "" {
		errs.Add("password", "Password is required")
	} else if len(p.Password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
	} else if len(p.Password) > 72 {
		errs.Add("password", "Password must be 72 characters or less")
	}

	return errs
}

type LoginParams struct {
	Email    string
	Password string
}

func (p *LoginParams) Validate() validate.Errors {
	errs := validate.Errors{}

	if strings.TrimSpace(p.Email) == "" {
		errs.Add("email", "Email is required")
	} else if !validate.Email(p.Email) {
		errs.Add("email", "Email format is invalid")
	}

	if p.Password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}
