package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

func TestWithTxRollsBackEveryWrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Repos().Balances.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		if _, err := r.Balances.UpdateAmount(ctx, "u1", 40); err != nil {
			return err
		}
		if _, err := r.Transactions.Create(ctx, models.Transaction{UserID: "u1", Amount: 40, Type: models.TxnEarned}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, err := s.Repos().Balances.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, b.Amount)
	txns, err := s.Repos().Transactions.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		if _, err := r.Balances.GetForUpdate(ctx, "u1"); err != nil {
			return err
		}
		_, err := r.Balances.UpdateAmount(ctx, "u1", 25)
		return err
	})
	require.NoError(t, err)

	b, err := s.Repos().Balances.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 25, b.Amount)
}

func TestItemUpdateIsVersionChecked(t *testing.T) {
	ctx := context.Background()
	items := NewStore().Repos().Items

	it, err := items.Create(ctx, models.Item{OwnerID: "a", PointsCost: 20, Status: models.ItemAvailable})
	require.NoError(t, err)
	require.EqualValues(t, 1, it.Version)

	stale := it
	it.Status = models.ItemPending
	updated, err := items.Update(ctx, it)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)

	stale.Status = models.ItemRejected
	_, err = items.Update(ctx, stale)
	assert.ErrorIs(t, err, repo.ErrConflict)

	_, err = items.Update(ctx, models.Item{ID: "missing", Version: 1})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestSwapUpdateStatusIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	swaps := NewStore().Repos().Swaps

	s, err := swaps.Create(ctx, models.SwapRequest{ItemID: "i", RequesterID: "b", ReceiverID: "a", Status: models.SwapPending})
	require.NoError(t, err)

	_, err = swaps.UpdateStatus(ctx, s.ID, models.SwapPending, models.SwapDeclined)
	require.NoError(t, err)
	_, err = swaps.UpdateStatus(ctx, s.ID, models.SwapPending, models.SwapAccepted)
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func TestConcurrentTransactionsSerialize(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Repos().Balances.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
				if _, err := r.Balances.GetForUpdate(ctx, "u1"); err != nil {
					return err
				}
				_, err := r.Balances.UpdateAmount(ctx, "u1", 1)
				return err
			})
		}()
	}
	wg.Wait()

	b, err := s.Repos().Balances.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 50, b.Amount)
}

func TestListingOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Repos()
	for i := 0; i < 3; i++ {
		_, err := r.Transactions.Create(ctx, models.Transaction{UserID: "u", Amount: int64(i + 1), Type: models.TxnEarned})
		require.NoError(t, err)
	}

	all, err := r.Transactions.ListByUser(ctx, "u", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.EqualValues(t, 3, all[0].Amount, "newest first")

	second, err := r.Transactions.ListByUser(ctx, "u", 1, 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.EqualValues(t, 2, second[0].Amount)

	empty, err := r.Transactions.ListByUser(ctx, "u", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
