package warranties

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

type seedItem struct {
	name     string
	category string
	serial   string
	supplier string
	purchase types.Date
	endIn    int
	months   int
	cost     int64
	notes    string
	claim    int64
}

// Seed inserts the demo data set when repo is empty and reports how many rows
// were created. End dates are relative to today so every status bucket is
// populated: three expiring soon, two expired, fifteen active.
func Seed(ctx context.Context, repo Repository, today types.Date) (int, error) {
	existing, err := repo.List(ctx, ListQuery{})
	if err != nil {
		return 0, fmt.Errorf("check existing warranties: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	items := []seedItem{
		{"Toyota 8FGU25 Forklift", "Material Handling", "FKL-2024-001", "Grainger", types.NewDate(2023, 6, 15), 10, 36, 28000, "Annual maintenance recommended.", 0},
		{"Carrier 50TC 10-Ton HVAC Unit", "HVAC", "HVAC-2022-445", "Grainger", types.NewDate(2022, 3, 10), 21, 48, 12500, "Filter replacements quarterly.", 0},
		{"Generac 150kW Diesel Generator", "Power Generation", "GEN-2021-889", "Grainger", types.NewDate(2021, 11, 20), 29, 60, 45000, "Claim filed for starter motor replacement.", 3200},
		{"Ingersoll Rand Air Compressor (15HP)", "Compressed Air", "COMP-2019-113", "Fastenal", types.NewDate(2019, 2, 1), -40, 24, 8900, "Expired; consider extended service plan.", 0},
		{"Honeywell Barcode Scanner", "IT/Devices", "SCN-2024-772", "CDW", types.NewDate(2024, 8, 5), -5, 12, 399, "Returned once for calibration.", 0},
	}

	categories := []string{"HVAC", "Material Handling", "Power Tools", "IT/Devices", "Safety", "Lighting"}
	suppliers := []string{"Grainger", "Fastenal", "Uline", "CDW", "MSC"}
	for i := 0; i < 15; i++ {
		items = append(items, seedItem{
			name:     fmt.Sprintf("Equipment Item %d", i+1),
			category: categories[i%len(categories)],
			serial:   fmt.Sprintf("SN-%d", 1000+i),
			supplier: suppliers[i%len(suppliers)],
			purchase: types.NewDate(2024, 1, 15),
			endIn:    60 + i*7,
			months:   24,
			cost:     500 + int64(i)*75,
		})
	}

	for _, item := range items {
		w := item.model(today)
		if err := repo.Create(ctx, w); err != nil {
			return 0, fmt.Errorf("seed %q: %w", item.name, err)
		}
	}
	return len(items), nil
}

func (s seedItem) model(today types.Date) *models.Warranty {
	months := s.months
	w := &models.Warranty{
		ProductName:          s.name,
		Category:             optionalText(&s.category),
		SerialNumber:         optionalText(&s.serial),
		Supplier:             optionalText(&s.supplier),
		Notes:                optionalText(&s.notes),
		PurchaseDate:         s.purchase,
		WarrantyStart:        s.purchase,
		WarrantyEnd:          today.AddDays(s.endIn),
		WarrantyLengthMonths: &months,
		PurchaseCost:         decimal.NewNullDecimal(decimal.NewFromInt(s.cost)),
	}
	if s.claim > 0 {
		w.ClaimFiled = true
		w.ClaimDate = &today
		w.ClaimAmount = decimal.NewNullDecimal(decimal.NewFromInt(s.claim))
	}
	return w
}
