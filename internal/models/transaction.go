package models

import "time"

type TransactionType string

const (
	TxnEarned TransactionType = "earned"
	TxnSpent  TransactionType = "spent"
)

// Transaction is an append-only ledger row. Amount is signed: spent rows are
// negative, earned rows positive. Both legs of a transfer share CorrelationID.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Amount        int64           `json:"amount"`
	Reason        string          `json:"reason"`
	Type          TransactionType `json:"type"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
