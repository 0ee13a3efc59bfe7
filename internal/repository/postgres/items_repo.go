package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

type itemsRepo struct{ q querier }

const itemColumns = `id, owner_id, title, description, category, size, condition, tags, images,
	points_cost, status, version, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category, &it.Size,
		&it.Condition, &it.Tags, &it.Images, &it.PointsCost, &it.Status, &it.Version,
		&it.CreatedAt, &it.UpdatedAt)
	return it, mapErr(err)
}

func (r *itemsRepo) Create(ctx context.Context, it models.Item) (models.Item, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return scanItem(r.q.QueryRow(ctx,
		`INSERT INTO items(id, owner_id, title, description, category, size, condition, tags, images, points_cost, status)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING `+itemColumns,
		it.ID, it.OwnerID, it.Title, it.Description, it.Category, it.Size, it.Condition,
		it.Tags, it.Images, it.PointsCost, it.Status,
	))
}

func (r *itemsRepo) GetByID(ctx context.Context, id string) (models.Item, error) {
	return scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id=$1`, id))
}

func (r *itemsRepo) GetForUpdate(ctx context.Context, id string) (models.Item, error) {
	return scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id=$1 FOR UPDATE`, id))
}

func (r *itemsRepo) List(ctx context.Context, f models.ItemFilter) ([]models.Item, error) {
	where := []string{}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.OwnerID != "" {
		add("owner_id=$%d", f.OwnerID)
	}
	if f.Status != "" {
		add("status=$%d", f.Status)
	}
	if f.Category != "" {
		add("lower(category)=lower($%d)", f.Category)
	}

	q := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	q += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT NULLIF($%d::int, 0) OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *itemsRepo) Update(ctx context.Context, it models.Item) (models.Item, error) {
	updated, err := scanItem(r.q.QueryRow(ctx,
		`UPDATE items
		    SET title=$3, description=$4, category=$5, size=$6, condition=$7, tags=$8, images=$9,
		        points_cost=$10, status=$11, version=version+1, updated_at=now()
		  WHERE id=$1 AND version=$2
		  RETURNING `+itemColumns,
		it.ID, it.Version, it.Title, it.Description, it.Category, it.Size, it.Condition,
		it.Tags, it.Images, it.PointsCost, it.Status,
	))
	if errors.Is(err, repo.ErrNotFound) {
		// distinguish a stale version from a missing row
		if _, getErr := r.GetByID(ctx, it.ID); getErr == nil {
			return models.Item{}, repo.ErrConflict
		}
	}
	return updated, err
}
