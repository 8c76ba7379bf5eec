package warranties

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/warrantywizard-backend/pkg/migrate/migratetest"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

func TestGormRepositoryRoundTrip(t *testing.T) {
	repo := NewGormRepository(migratetest.SQLite(t))
	ctx := context.Background()
	now := types.NewDate(2024, 1, 1)

	w := withCategory(withCost(warranty("Forklift", now.AddDays(10)), "28000.50"), "Material Handling")
	require.NoError(t, repo.Create(ctx, &w))
	require.NotZero(t, w.ID)

	other := withCategory(warranty("Heat pump", now.AddDays(400)), "HVAC")
	require.NoError(t, repo.Create(ctx, &other))

	got, err := repo.FindByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Forklift", got.ProductName)
	assert.Equal(t, "2024-01-11", got.WarrantyEnd.String())
	assert.True(t, got.PurchaseCost.Valid)
	assert.True(t, got.PurchaseCost.Decimal.Equal(decimal.RequireFromString("28000.50")))
	assert.False(t, got.ClaimAmount.Valid)
	assert.Nil(t, got.ClaimDate)

	rows, err := repo.List(ctx, ListQuery{Category: "HVAC"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Heat pump", rows[0].ProductName)

	ending, err := repo.FindByEndDate(ctx, now.AddDays(10))
	require.NoError(t, err)
	require.Len(t, ending, 1)
	assert.Equal(t, w.ID, ending[0].ID)

	claimDate := now
	got.ClaimFiled = true
	got.ClaimDate = &claimDate
	got.ClaimAmount = decimal.NewNullDecimal(decimal.NewFromInt(150))
	got.Notes = nil
	require.NoError(t, repo.Update(ctx, got))

	reloaded, err := repo.FindByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.ClaimFiled)
	require.NotNil(t, reloaded.ClaimDate)
	assert.Equal(t, "2024-01-01", reloaded.ClaimDate.String())
	assert.True(t, reloaded.ClaimAmount.Decimal.Equal(decimal.NewFromInt(150)))

	require.NoError(t, repo.Delete(ctx, w.ID))
	_, err = repo.FindByID(ctx, w.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, w.ID), ErrNotFound))

	missing := warranty("Ghost", now)
	missing.ID = 999
	assert.True(t, errors.Is(repo.Update(ctx, &missing), ErrNotFound))
}

func TestGormServiceSeedsAndAggregates(t *testing.T) {
	repo := NewGormRepository(migratetest.SQLite(t))
	svc, err := NewService(repo, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = Seed(ctx, repo, svc.Today())
	require.NoError(t, err)

	analytics, err := svc.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Total: 20, Active: 15, Expiring: 3, Expired: 2}, analytics.Totals)

	list, err := svc.List(ctx, Filter{Query: "generac"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].ClaimFiled)
}
