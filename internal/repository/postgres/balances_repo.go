package postgres

import (
	"context"

	"github.com/baharkarakas/rewear-backend/internal/models"
)

type balancesRepo struct{ q querier }

func scanBalance(row interface{ Scan(...any) error }) (models.Balance, error) {
	var b models.Balance
	err := row.Scan(&b.UserID, &b.Amount, &b.LastUpdatedAt)
	return b, mapErr(err)
}

func (r *balancesRepo) ensure(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO balances(user_id, amount, last_updated_at)
		 VALUES($1, 0, now())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	return mapErr(err)
}

func (r *balancesRepo) GetOrCreate(ctx context.Context, userID string) (models.Balance, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return models.Balance{}, err
	}
	return scanBalance(r.q.QueryRow(ctx,
		`SELECT user_id, amount, last_updated_at FROM balances WHERE user_id=$1`, userID))
}

func (r *balancesRepo) GetForUpdate(ctx context.Context, userID string) (models.Balance, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return models.Balance{}, err
	}
	return scanBalance(r.q.QueryRow(ctx,
		`SELECT user_id, amount, last_updated_at FROM balances WHERE user_id=$1 FOR UPDATE`, userID))
}

func (r *balancesRepo) UpdateAmount(ctx context.Context, userID string, delta int64) (models.Balance, error) {
	return scanBalance(r.q.QueryRow(ctx,
		`UPDATE balances
		    SET amount = amount + $2,
		        last_updated_at = now()
		  WHERE user_id = $1
		  RETURNING user_id, amount, last_updated_at`,
		userID, delta,
	))
}
