package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/rewear-backend/internal/models"
)

type transactionsRepo struct{ q querier }

const txnColumns = `id, user_id, amount, reason, type, correlation_id, created_at`

func scanTxn(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Reason, &tx.Type, &tx.CorrelationID, &tx.CreatedAt)
	return tx, mapErr(err)
}

func (r *transactionsRepo) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	return scanTxn(r.q.QueryRow(ctx,
		`INSERT INTO transactions (id, user_id, amount, reason, type, correlation_id)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING `+txnColumns,
		tx.ID, tx.UserID, tx.Amount, tx.Reason, tx.Type, tx.CorrelationID,
	))
}

func (r *transactionsRepo) list(ctx context.Context, q string, args ...any) ([]models.Transaction, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	return r.list(ctx,
		`SELECT `+txnColumns+`
		   FROM transactions
		  WHERE user_id=$1
		  ORDER BY created_at DESC, id
		  LIMIT NULLIF($2::int, 0) OFFSET $3`,
		userID, limit, offset,
	)
}

func (r *transactionsRepo) ListByCorrelation(ctx context.Context, correlationID string) ([]models.Transaction, error) {
	return r.list(ctx,
		`SELECT `+txnColumns+`
		   FROM transactions
		  WHERE correlation_id=$1
		  ORDER BY amount`,
		correlationID,
	)
}
