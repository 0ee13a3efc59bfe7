package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/models"
)

func TestAdminRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "alice", 0)
	x := f.item(t, a, 10)
	plain := actorOf(a)

	_, err := f.admin.ListUsers(ctx, plain, 0, 0)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	_, err = f.admin.ListItems(ctx, plain, models.ItemFilter{})
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	_, err = f.admin.RejectItem(ctx, plain, x.ID)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	_, err = f.admin.GrantPoints(ctx, plain, a.ID, 10)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	_, err = f.admin.BlockUser(ctx, plain, a.ID)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestAdminOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.adminUser(t)
	a := f.user(t, "alice", 0)
	x := f.item(t, a, 10)
	f.item(t, a, 15)

	users, err := f.admin.ListUsers(ctx, admin, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	txn, err := f.admin.GrantPoints(ctx, admin, a.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, ReasonAdminGrant, txn.Reason)
	assert.EqualValues(t, 30, f.balance(t, a.ID))

	_, err = f.admin.RejectItem(ctx, admin, x.ID)
	require.NoError(t, err)
	rejected, err := f.admin.ListItems(ctx, admin, models.ItemFilter{Status: models.ItemRejected})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, x.ID, rejected[0].ID)
}

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "alice", 0)
	b := f.user(t, "bobby", 60)
	x := f.item(t, a, 20)
	f.item(t, a, 10)
	y := f.item(t, b, 5)

	_, err := f.swaps.RequestSwap(ctx, b.ID, x.ID, nil)
	require.NoError(t, err)
	_, err = f.catalog.SetStatus(ctx, actorOf(b), y.ID, models.ItemPending)
	require.NoError(t, err)

	d, err := f.dashboard.Summary(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, d.User.ID)
	assert.Zero(t, d.Balance)
	assert.Equal(t, 2, d.ItemsByStatus[models.ItemAvailable])
	assert.Len(t, d.IncomingPending, 1)
	assert.Empty(t, d.OutgoingPending)

	d, err = f.dashboard.Summary(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 60, d.Balance)
	assert.Equal(t, 1, d.ItemsByStatus[models.ItemPending])
	assert.Len(t, d.OutgoingPending, 1)
	assert.Len(t, d.RecentTransactions, 1)

	_, err = f.dashboard.Summary(ctx, "ghost")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
