package models

import "time"

// Balance is a user's points balance. It never goes negative and is only
// written by the points ledger.
type Balance struct {
	UserID        string    `json:"user_id"`
	Amount        int64     `json:"amount"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}
