package models

import (
	"strings"
	"time"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Blocked      bool      `json:"blocked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	if len(strings.TrimSpace(u.Username)) < 3 {
		return apperr.New(apperr.CodeValidation, "username too short")
	}
	if !strings.Contains(u.Email, "@") {
		return apperr.New(apperr.CodeValidation, "invalid email")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
