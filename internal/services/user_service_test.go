package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/models"
)

const goodPassword = "Sw4p-Me!"

func TestRegisterCreditsWelcomeBonus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.users.Register(ctx, " sarah ", "Sarah@ReWear.io", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, "sarah", u.Username)
	assert.Equal(t, "sarah@rewear.io", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, goodPassword, u.PasswordHash)

	assert.EqualValues(t, 50, f.balance(t, u.ID))
	hist, err := f.points.History(ctx, u.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, ReasonWelcomeBonus, hist[0].Reason)

	_, err = f.users.Register(ctx, "sarah2", "sarah@rewear.io", goodPassword)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestRegisterAdminEmail(t *testing.T) {
	f := newFixture(t)
	u, err := f.users.Register(context.Background(), "boss", "admin@rewear.io", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{goodPassword, true},
		{"Abcdefg1!", true},
		{"short1!", false},
		{"alllower1!", false},
		{"NoDigits!!", false},
		{"NoSymbol12", false},
	}
	for _, tc := range tests {
		t.Run(tc.password, func(t *testing.T) {
			err := CheckPassword(tc.password)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.Is(err, apperr.CodeValidation))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u, err := f.users.Register(ctx, "sarah", "sarah@rewear.io", goodPassword)
	require.NoError(t, err)

	got, err := f.users.Authenticate(ctx, "SARAH@rewear.io", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.users.Authenticate(ctx, "sarah@rewear.io", "Wrong-pass1")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))
	_, err = f.users.Authenticate(ctx, "nobody@rewear.io", goodPassword)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))

	admin := f.adminUser(t)
	_, err = f.users.SetBlocked(ctx, admin, u.ID, true)
	require.NoError(t, err)
	_, err = f.users.Authenticate(ctx, "sarah@rewear.io", goodPassword)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestSetBlockedRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.adminUser(t)
	a := f.user(t, "alice", 0)

	_, err := f.users.SetBlocked(ctx, actorOf(a), admin.UserID, true)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	_, err = f.users.SetBlocked(ctx, admin, admin.UserID, true)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = f.users.SetBlocked(ctx, admin, "ghost", true)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	u, err := f.admin.UnblockUser(ctx, admin, a.ID)
	require.NoError(t, err)
	assert.False(t, u.Blocked)
}
