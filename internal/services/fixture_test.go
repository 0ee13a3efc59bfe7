package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rewear-backend/internal/models"
	"github.com/baharkarakas/rewear-backend/internal/repository/memory"
)

type fixture struct {
	store     *memory.Store
	users     *UserService
	points    *PointsService
	catalog   *CatalogService
	swaps     *SwapService
	messages  *MessageService
	admin     *AdminService
	dashboard *DashboardService
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, CatalogOptions{MaxPoints: 100}, UserOptions{WelcomeBonus: 50, AdminEmails: []string{"admin@rewear.io"}})
}

func newFixtureWith(t *testing.T, copts CatalogOptions, uopts UserOptions) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := quietLogger()
	audit := NewAuditor(store.Repos().AuditLogs, nil, log)
	f := &fixture{
		store:     store,
		users:     NewUserService(store, audit, log, uopts),
		points:    NewPointsService(store, audit, log),
		catalog:   NewCatalogService(store, audit, log, copts),
		swaps:     NewSwapService(store, audit, log),
		messages:  NewMessageService(store, log),
		dashboard: NewDashboardService(store),
	}
	f.admin = NewAdminService(f.users, f.catalog, f.points)
	return f
}

// user creates a user directly in the store and seeds its balance.
func (f *fixture) user(t *testing.T, name string, points int64) models.User {
	t.Helper()
	u, err := f.store.Repos().Users.Create(context.Background(), models.User{
		Username: name,
		Email:    name + "@rewear.io",
		Role:     models.RoleUser,
	})
	require.NoError(t, err)
	if points > 0 {
		_, err = f.points.Credit(context.Background(), u.ID, points, ReasonAdminGrant)
		require.NoError(t, err)
	}
	return u
}

func (f *fixture) adminUser(t *testing.T) Actor {
	t.Helper()
	u, err := f.store.Repos().Users.Create(context.Background(), models.User{
		Username: "moderator",
		Email:    "moderator@rewear.io",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	return Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) item(t *testing.T, owner models.User, cost int64) models.Item {
	t.Helper()
	it, err := f.catalog.Create(context.Background(), owner.ID, cost, jacket())
	require.NoError(t, err)
	return it
}

func (f *fixture) balance(t *testing.T, userID string) int64 {
	t.Helper()
	b, err := f.points.Balance(context.Background(), userID)
	require.NoError(t, err)
	return b.Amount
}

func actorOf(u models.User) Actor { return Actor{UserID: u.ID, Role: u.Role} }

func jacket() models.ItemAttrs {
	return models.ItemAttrs{
		Title:       "Vintage Denim Jacket",
		Description: "Classic blue denim jacket in great condition",
		Category:    "Outerwear",
		Size:        "M",
		Condition:   models.ConditionExcellent,
		Tags:        []string{"vintage", "denim"},
	}
}

func strPtr(s string) *string { return &s }
