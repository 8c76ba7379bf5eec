package warranties

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

func warranty(name string, end types.Date) models.Warranty {
	return models.Warranty{
		ProductName:   name,
		PurchaseDate:  end.AddMonths(-12),
		WarrantyStart: end.AddMonths(-12),
		WarrantyEnd:   end,
	}
}

func withCost(w models.Warranty, cost string) models.Warranty {
	w.PurchaseCost = decimal.NewNullDecimal(decimal.RequireFromString(cost))
	return w
}

func withCategory(w models.Warranty, category string) models.Warranty {
	w.Category = &category
	return w
}

func TestSummarize(t *testing.T) {
	now := types.NewDate(2024, 1, 1)

	claimed := withCost(warranty("Generator", now.AddDays(-10)), "1000")
	claimed.ClaimFiled = true
	claimed.ClaimAmount = decimal.NewNullDecimal(decimal.RequireFromString("250.50"))

	ws := []models.Warranty{
		withCost(warranty("Forklift", now.AddDays(100)), "28000"),
		withCost(warranty("HVAC", now.AddDays(5)), "12500.25"),
		warranty("Scanner", now.AddDays(30)),
		claimed,
	}

	s := Summarize(ws, now)

	assert.Equal(t, Totals{Total: 4, Active: 1, Expiring: 2, Expired: 1}, s.Totals)
	assert.Equal(t, 1, s.Claims.Filed)
	assert.True(t, s.Claims.TotalClaimAmount.Equal(decimal.RequireFromString("250.5")))
	assert.True(t, s.CoverageValue.Equal(decimal.RequireFromString("41500.25")))
	assert.Equal(t, s.Totals.Total, s.Totals.Active+s.Totals.Expiring+s.Totals.Expired)

	assert.Equal(t, s, Summarize(ws, now))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, types.NewDate(2024, 1, 1))

	assert.Zero(t, s.Totals.Total)
	assert.True(t, s.CoverageValue.IsZero())
	assert.True(t, s.Claims.TotalClaimAmount.IsZero())
}

func TestExpiringSortsSoonestFirst(t *testing.T) {
	now := types.NewDate(2024, 1, 1)
	ws := []models.Warranty{
		warranty("A", now.AddDays(20)),
		warranty("B", now.AddDays(3)),
		warranty("C", now.AddDays(-1)),
		warranty("D", now.AddDays(45)),
		warranty("E", now.AddDays(3)),
	}

	got := Expiring(ws, now, 30)

	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].ProductName)
	assert.Equal(t, "E", got[1].ProductName)
	assert.Equal(t, "A", got[2].ProductName)
	assert.Equal(t, 3, got[0].DaysUntilExpiry)
}

func TestExpiringWindow(t *testing.T) {
	now := types.NewDate(2024, 1, 1)
	ws := []models.Warranty{
		warranty("A", now.AddDays(10)),
		warranty("B", now.AddDays(45)),
	}

	assert.Len(t, Expiring(ws, now, 7), 0)
	assert.Len(t, Expiring(ws, now, 30), 1)
	assert.Len(t, Expiring(ws, now, 60), 2)
	assert.Len(t, Expiring(ws, now, 0), 1)
}

func TestExpiredMostRecentFirst(t *testing.T) {
	now := types.NewDate(2024, 1, 1)
	ws := []models.Warranty{
		warranty("Old", now.AddDays(-90)),
		warranty("Live", now.AddDays(10)),
		warranty("Recent", now.AddDays(-2)),
	}

	got := Expired(ws, now)

	require.Len(t, got, 2)
	assert.Equal(t, "Recent", got[0].ProductName)
	assert.Equal(t, "Old", got[1].ProductName)
}

func TestBuildBreakdown(t *testing.T) {
	now := types.NewDate(2024, 1, 10)

	expiredClaimed := withCost(warranty("Claimed", now.AddDays(-3)), "700")
	expiredClaimed.ClaimFiled = true

	ws := []models.Warranty{
		withCategory(withCost(warranty("Lift", now.AddDays(5)), "100"), "Material Handling"),
		withCategory(withCost(warranty("Truck", now.AddMonths(2)), "200"), "Material Handling"),
		withCategory(withCost(warranty("Heat pump", now.AddMonths(30)), "50"), "HVAC"),
		withCost(warranty("Unlabelled", now.AddDays(1)), "10"),
		withCost(warranty("Missed", now.AddDays(-1)), "300"),
		expiredClaimed,
	}

	b := BuildBreakdown(ws, now)

	assert.True(t, b.ActiveValue.Equal(decimal.NewFromInt(360)))
	assert.True(t, b.MissedClaimsValue.Equal(decimal.NewFromInt(300)))

	require.Len(t, b.ByCategory, 3)
	assert.Equal(t, "Material Handling", b.ByCategory[0].Category)
	assert.Equal(t, 2, b.ByCategory[0].Count)
	assert.True(t, b.ByCategory[0].Value.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "HVAC", b.ByCategory[1].Category)
	assert.Equal(t, uncategorized, b.ByCategory[2].Category)

	assert.Equal(t, []MonthStat{{Month: "2024-01", Count: 2}, {Month: "2024-03", Count: 1}}, b.MonthlyExpiring)
}
