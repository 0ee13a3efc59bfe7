package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/models"
)

func TestCreateItemValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "alice", 0)

	missing := jacket()
	missing.Size = " "

	tests := []struct {
		name  string
		cost  int64
		attrs models.ItemAttrs
	}{
		{"zero cost", 0, jacket()},
		{"negative cost", -5, jacket()},
		{"above cap", 101, jacket()},
		{"missing size", 20, missing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.catalog.Create(ctx, a.ID, tc.cost, tc.attrs)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.CodeValidation), err)
		})
	}

	it, err := f.catalog.Create(ctx, a.ID, 100, jacket())
	require.NoError(t, err)
	assert.Equal(t, models.ItemAvailable, it.Status)
	assert.EqualValues(t, 1, it.Version)
	assert.Equal(t, a.ID, it.OwnerID)

	_, err = f.catalog.Create(ctx, "ghost", 10, jacket())
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestListingBonus(t *testing.T) {
	ctx := context.Background()
	f := newFixtureWith(t, CatalogOptions{MaxPoints: 100, ListingBonus: 10}, UserOptions{})
	a := f.user(t, "alice", 0)

	it := f.item(t, a, 30)
	assert.EqualValues(t, 10, f.balance(t, a.ID))

	hist, err := f.points.History(ctx, a.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, ReasonListingBonus, hist[0].Reason)
	assert.Equal(t, it.ID, hist[0].CorrelationID)
}

func TestSetStatusFollowsTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.adminUser(t)
	a := f.user(t, "alice", 0)
	owner := actorOf(a)
	stranger := actorOf(f.user(t, "sneaky", 0))

	t.Run("owner reserves and releases", func(t *testing.T) {
		x := f.item(t, a, 10)
		got, err := f.catalog.SetStatus(ctx, owner, x.ID, models.ItemPending)
		require.NoError(t, err)
		assert.Equal(t, models.ItemPending, got.Status)
		assert.EqualValues(t, 2, got.Version)

		got, err = f.catalog.SetStatus(ctx, owner, x.ID, models.ItemAvailable)
		require.NoError(t, err)
		assert.Equal(t, models.ItemAvailable, got.Status)
	})

	t.Run("same state is not an edge", func(t *testing.T) {
		x := f.item(t, a, 10)
		_, err := f.catalog.SetStatus(ctx, owner, x.ID, models.ItemAvailable)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))
	})

	t.Run("swapped only through a swap", func(t *testing.T) {
		x := f.item(t, a, 10)
		_, err := f.catalog.SetStatus(ctx, owner, x.ID, models.ItemPending)
		require.NoError(t, err)
		_, err = f.catalog.SetStatus(ctx, owner, x.ID, models.ItemSwapped)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))
		_, err = f.catalog.SetStatus(ctx, admin, x.ID, models.ItemSwapped)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))
	})

	t.Run("reject is admin only and final", func(t *testing.T) {
		x := f.item(t, a, 10)
		_, err := f.catalog.SetStatus(ctx, owner, x.ID, models.ItemRejected)
		assert.True(t, apperr.Is(err, apperr.CodeForbidden))

		got, err := f.catalog.SetStatus(ctx, admin, x.ID, models.ItemRejected)
		require.NoError(t, err)
		assert.Equal(t, models.ItemRejected, got.Status)

		for _, next := range []models.ItemStatus{models.ItemAvailable, models.ItemPending, models.ItemRejected} {
			_, err := f.catalog.SetStatus(ctx, admin, x.ID, next)
			assert.Truef(t, apperr.Is(err, apperr.CodeInvalidTransition), "rejected -> %s", next)
		}
	})

	t.Run("strangers are refused", func(t *testing.T) {
		x := f.item(t, a, 10)
		_, err := f.catalog.SetStatus(ctx, stranger, x.ID, models.ItemPending)
		assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	})

	t.Run("unknown status and item", func(t *testing.T) {
		x := f.item(t, a, 10)
		_, err := f.catalog.SetStatus(ctx, owner, x.ID, "sold")
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
		_, err = f.catalog.SetStatus(ctx, owner, "missing", models.ItemPending)
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})
}

func TestRejectDeclinesPendingRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.adminUser(t)
	a := f.user(t, "alice", 0)
	b := f.user(t, "bobby", 25)
	x := f.item(t, a, 20)

	req, err := f.swaps.RequestSwap(ctx, b.ID, x.ID, nil)
	require.NoError(t, err)

	_, err = f.admin.RejectItem(ctx, admin, x.ID)
	require.NoError(t, err)

	got, err := f.swaps.Get(ctx, actorOf(b), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapDeclined, got.Status)

	logs, err := f.store.Repos().AuditLogs.ListByEntity(ctx, "item", x.ID)
	require.NoError(t, err)
	actions := []string{}
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, "status_change")
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "alice", 0)
	b := f.user(t, "bobby", 50)
	x := f.item(t, a, 20)

	edited := jacket()
	edited.Title = "Faded Denim Jacket"
	got, err := f.catalog.Update(ctx, actorOf(a), x.ID, 25, edited)
	require.NoError(t, err)
	assert.Equal(t, "Faded Denim Jacket", got.Title)
	assert.EqualValues(t, 25, got.PointsCost)

	_, err = f.catalog.Update(ctx, actorOf(b), x.ID, 25, edited)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	_, err = f.swaps.RequestSwap(ctx, b.ID, x.ID, nil)
	require.NoError(t, err)

	_, err = f.catalog.Update(ctx, actorOf(a), x.ID, 30, edited)
	assert.True(t, apperr.Is(err, apperr.CodeConflict), "price is frozen while requests are pending")

	edited.Description = "Worn in all the right places"
	_, err = f.catalog.Update(ctx, actorOf(a), x.ID, 25, edited)
	assert.NoError(t, err)
}

func TestSwappedItemIsImmutable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "alice", 0)
	b := f.user(t, "bobby", 25)
	x := f.item(t, a, 20)
	req, err := f.swaps.RequestSwap(ctx, b.ID, x.ID, nil)
	require.NoError(t, err)
	_, err = f.swaps.Accept(ctx, a.ID, req.ID)
	require.NoError(t, err)

	_, err = f.catalog.Update(ctx, actorOf(a), x.ID, 20, jacket())
	assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))
	_, err = f.catalog.SetStatus(ctx, actorOf(a), x.ID, models.ItemAvailable)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))
}

func TestListItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "alice", 0)
	d := f.user(t, "derek", 0)
	f.item(t, a, 10)
	f.item(t, a, 20)
	f.item(t, d, 30)

	all, err := f.catalog.List(ctx, models.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.EqualValues(t, 30, all[0].PointsCost, "newest first")

	mine, err := f.catalog.List(ctx, models.ItemFilter{OwnerID: a.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	outer, err := f.catalog.List(ctx, models.ItemFilter{Category: "outerwear", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, outer, 1)

	_, err = f.catalog.List(ctx, models.ItemFilter{Status: "sold"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}
