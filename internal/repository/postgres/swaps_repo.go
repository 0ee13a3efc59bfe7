package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

type swapsRepo struct{ q querier }

const swapColumns = `id, item_id, requester_id, receiver_id, points_cost, status, message, created_at, updated_at`

func scanSwap(row interface{ Scan(...any) error }) (models.SwapRequest, error) {
	var s models.SwapRequest
	err := row.Scan(&s.ID, &s.ItemID, &s.RequesterID, &s.ReceiverID, &s.PointsCost, &s.Status,
		&s.Message, &s.CreatedAt, &s.UpdatedAt)
	return s, mapErr(err)
}

func (r *swapsRepo) Create(ctx context.Context, s models.SwapRequest) (models.SwapRequest, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return scanSwap(r.q.QueryRow(ctx,
		`INSERT INTO swap_requests(id, item_id, requester_id, receiver_id, points_cost, status, message)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING `+swapColumns,
		s.ID, s.ItemID, s.RequesterID, s.ReceiverID, s.PointsCost, s.Status, s.Message,
	))
}

func (r *swapsRepo) GetByID(ctx context.Context, id string) (models.SwapRequest, error) {
	return scanSwap(r.q.QueryRow(ctx, `SELECT `+swapColumns+` FROM swap_requests WHERE id=$1`, id))
}

func (r *swapsRepo) GetForUpdate(ctx context.Context, id string) (models.SwapRequest, error) {
	return scanSwap(r.q.QueryRow(ctx, `SELECT `+swapColumns+` FROM swap_requests WHERE id=$1 FOR UPDATE`, id))
}

func (r *swapsRepo) list(ctx context.Context, q string, args ...any) ([]models.SwapRequest, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SwapRequest{}
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *swapsRepo) ListByItem(ctx context.Context, itemID string, status models.SwapStatus) ([]models.SwapRequest, error) {
	return r.list(ctx,
		`SELECT `+swapColumns+`
		   FROM swap_requests
		  WHERE item_id=$1 AND ($2 = '' OR status=$2)
		  ORDER BY created_at, id`,
		itemID, string(status))
}

func (r *swapsRepo) ListByUser(ctx context.Context, userID string, role models.SwapRole, status models.SwapStatus, limit, offset int) ([]models.SwapRequest, error) {
	var who string
	switch role {
	case models.SwapRoleIncoming:
		who = "receiver_id=$1"
	case models.SwapRoleOutgoing:
		who = "requester_id=$1"
	default:
		who = "(requester_id=$1 OR receiver_id=$1)"
	}
	return r.list(ctx, fmt.Sprintf(
		`SELECT `+swapColumns+`
		   FROM swap_requests
		  WHERE %s AND ($2 = '' OR status=$2)
		  ORDER BY created_at DESC, id
		  LIMIT NULLIF($3::int, 0) OFFSET $4`, who),
		userID, string(status), limit, offset)
}

func (r *swapsRepo) HasPending(ctx context.Context, itemID, requesterID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM swap_requests WHERE item_id=$1 AND requester_id=$2 AND status='pending')`,
		itemID, requesterID).Scan(&exists)
	return exists, mapErr(err)
}

func (r *swapsRepo) UpdateStatus(ctx context.Context, id string, from, to models.SwapStatus) (models.SwapRequest, error) {
	s, err := scanSwap(r.q.QueryRow(ctx,
		`UPDATE swap_requests SET status=$3, updated_at=now()
		  WHERE id=$1 AND status=$2
		  RETURNING `+swapColumns,
		id, from, to))
	if errors.Is(err, repo.ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return models.SwapRequest{}, repo.ErrConflict
		}
	}
	return s, err
}
