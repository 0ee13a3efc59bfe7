package services

import (
	"context"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/models"
)

// AdminService is the moderation surface. Every call requires an admin actor.
type AdminService struct {
	users   *UserService
	catalog *CatalogService
	points  *PointsService
}

func NewAdminService(users *UserService, catalog *CatalogService, points *PointsService) *AdminService {
	return &AdminService{users: users, catalog: catalog, points: points}
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.CodeForbidden, "admin only")
	}
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor Actor, limit, offset int) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx, limit, offset)
}

func (s *AdminService) BlockUser(ctx context.Context, actor Actor, userID string) (models.User, error) {
	return s.users.SetBlocked(ctx, actor, userID, true)
}

func (s *AdminService) UnblockUser(ctx context.Context, actor Actor, userID string) (models.User, error) {
	return s.users.SetBlocked(ctx, actor, userID, false)
}

// ListItems lists items in any status, rejected ones included.
func (s *AdminService) ListItems(ctx context.Context, actor Actor, f models.ItemFilter) ([]models.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.catalog.List(ctx, f)
}

func (s *AdminService) RejectItem(ctx context.Context, actor Actor, itemID string) (models.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Item{}, err
	}
	return s.catalog.SetStatus(ctx, actor, itemID, models.ItemRejected)
}

func (s *AdminService) GrantPoints(ctx context.Context, actor Actor, userID string, amount int64) (models.Transaction, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Transaction{}, err
	}
	return s.points.Credit(ctx, userID, amount, ReasonAdminGrant)
}
