package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/rewear-backend/internal/models"
)

type messagesRepo struct{ q querier }

const messageColumns = `id, sender_id, recipient_id, swap_id, body, created_at`

func scanMessage(row interface{ Scan(...any) error }) (models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.SwapID, &m.Body, &m.CreatedAt)
	return m, mapErr(err)
}

func (r *messagesRepo) Create(ctx context.Context, m models.Message) (models.Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return scanMessage(r.q.QueryRow(ctx,
		`INSERT INTO messages(id, sender_id, recipient_id, swap_id, body)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING `+messageColumns,
		m.ID, m.SenderID, m.RecipientID, m.SwapID, m.Body,
	))
}

func (r *messagesRepo) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Message, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+messageColumns+`
		   FROM messages
		  WHERE sender_id=$1 OR recipient_id=$1
		  ORDER BY created_at DESC, id
		  LIMIT NULLIF($2::int, 0) OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
