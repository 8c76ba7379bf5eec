package warranties

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

func TestComputeStatusBoundaries(t *testing.T) {
	now := types.NewDate(2024, 1, 1)

	cases := []struct {
		name string
		end  types.Date
		want enums.WarrantyStatus
	}{
		{"yesterday", now.AddDays(-1), enums.WarrantyStatusExpired},
		{"today", now, enums.WarrantyStatusExpiringSoon},
		{"at threshold", now.AddDays(30), enums.WarrantyStatusExpiringSoon},
		{"past threshold", now.AddDays(31), enums.WarrantyStatusActive},
		{"far future", now.AddDays(400), enums.WarrantyStatusActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeStatus(tc.end, now, 30))
		})
	}
}

func TestComputeStatusFarFutureEnd(t *testing.T) {
	now := types.NewDate(2025, 6, 1)
	end := types.NewDate(2700, 1, 1)

	assert.Equal(t, 246387, DaysBetween(now, end))
	assert.Equal(t, enums.WarrantyStatusActive, ComputeStatus(end, now, 200000))
	assert.Equal(t, enums.WarrantyStatusExpiringSoon, ComputeStatus(end, now, 246387))
	assert.Equal(t, enums.WarrantyStatusExpired, ComputeStatus(now, end, 30))
}

func TestComputeStatusCoercesNonPositiveThreshold(t *testing.T) {
	now := types.NewDate(2024, 1, 1)
	end := now.AddDays(25)

	assert.Equal(t, enums.WarrantyStatusExpiringSoon, ComputeStatus(end, now, 0))
	assert.Equal(t, enums.WarrantyStatusExpiringSoon, ComputeStatus(end, now, -7))
	assert.Equal(t, enums.WarrantyStatusActive, ComputeStatus(end, now, 7))
}

func TestEvaluateAnnotatesDays(t *testing.T) {
	now := types.NewDate(2024, 1, 1)
	w := warranty("Drill", now.AddDays(12))

	r := Evaluate(w, now, 30)

	assert.Equal(t, 12, r.DaysUntilExpiry)
	assert.Equal(t, enums.WarrantyStatusExpiringSoon, r.Status)
}
