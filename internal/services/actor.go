package services

import "github.com/baharkarakas/rewear-backend/internal/models"

// Actor is the authenticated caller of a ledger operation.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }
