package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/models"
)

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "alice", 40)
	b := f.user(t, "bobby", 0)

	debit, credit, err := f.points.Transfer(ctx, a.ID, b.ID, 15, "gift", "")
	require.NoError(t, err)
	assert.EqualValues(t, -15, debit.Amount)
	assert.EqualValues(t, 15, credit.Amount)
	assert.NotEmpty(t, debit.CorrelationID)
	assert.Equal(t, debit.CorrelationID, credit.CorrelationID)
	assert.EqualValues(t, 25, f.balance(t, a.ID))
	assert.EqualValues(t, 15, f.balance(t, b.ID))
}

func TestTransferRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "alice", 10)
	b := f.user(t, "bobby", 0)

	tests := []struct {
		name     string
		from, to string
		amount   int64
		code     apperr.Code
	}{
		{"zero amount", a.ID, b.ID, 0, apperr.CodeValidation},
		{"negative amount", a.ID, b.ID, -3, apperr.CodeValidation},
		{"self", a.ID, a.ID, 5, apperr.CodeValidation},
		{"overdraw", a.ID, b.ID, 11, apperr.CodeInsufficientFunds},
		{"unknown recipient", a.ID, "ghost", 5, apperr.CodeNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.points.Transfer(ctx, tc.from, tc.to, tc.amount, "gift", "")
			require.Error(t, err)
			assert.Equal(t, tc.code, apperr.CodeOf(err), err)
		})
	}

	assert.EqualValues(t, 10, f.balance(t, a.ID))
	assert.Zero(t, f.balance(t, b.ID))
	hist, err := f.points.History(ctx, a.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 1, "only the seed credit")
}

func TestCreditAndHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "alice", 0)

	_, err := f.points.Credit(ctx, a.ID, 0, ReasonAdminGrant)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = f.points.Credit(ctx, "ghost", 5, ReasonAdminGrant)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	for _, amt := range []int64{5, 7} {
		txn, err := f.points.Credit(ctx, a.ID, amt, ReasonAdminGrant)
		require.NoError(t, err)
		assert.Equal(t, models.TxnEarned, txn.Type)
	}
	assert.EqualValues(t, 12, f.balance(t, a.ID))

	hist, err := f.points.History(ctx, a.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.EqualValues(t, 7, hist[0].Amount)

	logs, err := f.store.Repos().AuditLogs.ListByEntity(ctx, "transaction", hist[0].ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "credit", logs[0].Action)
}

func TestBalanceOfUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.points.Balance(context.Background(), "ghost")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
