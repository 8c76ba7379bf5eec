package warranties

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	now := types.NewDate(2024, 1, 1)
	w := withCategory(warranty("Trane Heat Pump", now.AddDays(100)), "HVAC")
	supplier := "Grainger"
	serial := "HP-2023-558"
	w.Supplier = &supplier
	w.SerialNumber = &serial
	r := Evaluate(w, now, 30)

	for _, q := range []string{"trane", "HEAT", "grain", "hp-2023", "hvac", "pump hp"} {
		assert.True(t, Filter{Query: q}.Matches(r), "query %q", q)
	}
	assert.False(t, Filter{Query: "forklift"}.Matches(r))
	assert.True(t, Filter{Query: "   "}.Matches(r))
}

func TestFilterCombinesCriteria(t *testing.T) {
	now := types.NewDate(2024, 1, 1)
	records := EvaluateAll([]models.Warranty{
		withCategory(warranty("Forklift", now.AddDays(10)), "Material Handling"),
		withCategory(warranty("Reach truck", now.AddDays(200)), "Material Handling"),
		withCategory(warranty("Heat pump", now.AddDays(10)), "HVAC"),
	}, now, 30)

	got := Filter{Status: enums.WarrantyStatusExpiringSoon, Category: "Material Handling"}.Apply(records)

	assert.Len(t, got, 1)
	assert.Equal(t, "Forklift", got[0].ProductName)
	assert.Len(t, Filter{}.Apply(records), 3)
	assert.Empty(t, Filter{Supplier: "Uline"}.Apply(records))
}

func TestStatusFilter(t *testing.T) {
	status, err := StatusFilter("expired")
	assert.NoError(t, err)
	assert.Equal(t, enums.WarrantyStatusExpired, status)

	status, err = StatusFilter("")
	assert.NoError(t, err)
	assert.Empty(t, status)

	_, err = StatusFilter("lapsed")
	assert.Error(t, err)
}
