package warranties

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

const uncategorized = "Uncategorized"

// Totals counts warranties per status bucket.
type Totals struct {
	Total    int
	Active   int
	Expiring int
	Expired  int
}

// ClaimTotals summarizes filed claims.
type ClaimTotals struct {
	Filed            int
	TotalClaimAmount decimal.Decimal
}

// Summary is the dashboard aggregate over a warranty set.
type Summary struct {
	Totals        Totals
	Claims        ClaimTotals
	CoverageValue decimal.Decimal
}

// CategoryStat counts non-expired warranties of one category.
type CategoryStat struct {
	Category string
	Count    int
	Value    decimal.Decimal
}

// MonthStat counts warranties ending in one calendar month (YYYY-MM).
type MonthStat struct {
	Month string
	Count int
}

// Breakdown holds the secondary dashboard figures.
type Breakdown struct {
	ActiveValue       decimal.Decimal
	MissedClaimsValue decimal.Decimal
	ByCategory        []CategoryStat
	MonthlyExpiring   []MonthStat
}

// Summarize aggregates ws as of now using the default expiring threshold.
// Absent costs and claim amounts count as zero.
func Summarize(ws []models.Warranty, now types.Date) Summary {
	s := Summary{
		Claims:        ClaimTotals{TotalClaimAmount: decimal.Zero},
		CoverageValue: decimal.Zero,
	}
	for _, w := range ws {
		s.Totals.Total++
		switch ComputeStatus(w.WarrantyEnd, now, DefaultExpiringThresholdDays) {
		case enums.WarrantyStatusActive:
			s.Totals.Active++
		case enums.WarrantyStatusExpiringSoon:
			s.Totals.Expiring++
		case enums.WarrantyStatusExpired:
			s.Totals.Expired++
		}
		if w.ClaimFiled {
			s.Claims.Filed++
		}
		s.Claims.TotalClaimAmount = s.Claims.TotalClaimAmount.Add(amount(w.ClaimAmount))
		s.CoverageValue = s.CoverageValue.Add(amount(w.PurchaseCost))
	}
	return s
}

// Expiring returns the warranties that are expiring_soon under a days-wide
// window, soonest first. Ties keep their input order.
func Expiring(ws []models.Warranty, now types.Date, days int) []Record {
	if days <= 0 {
		days = DefaultExpiringThresholdDays
	}
	out := make([]Record, 0)
	for _, w := range ws {
		r := Evaluate(w, now, days)
		if r.Status == enums.WarrantyStatusExpiringSoon {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntilExpiry < out[j].DaysUntilExpiry
	})
	return out
}

// Expired returns the warranties whose end date has passed, most recently
// expired first.
func Expired(ws []models.Warranty, now types.Date) []Record {
	out := make([]Record, 0)
	for _, w := range ws {
		r := Evaluate(w, now, DefaultExpiringThresholdDays)
		if r.Status == enums.WarrantyStatusExpired {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WarrantyEnd.After(out[j].WarrantyEnd)
	})
	return out
}

// BuildBreakdown computes the value, category and monthly expiry figures.
// The monthly histogram covers the twelve months starting with now's month.
func BuildBreakdown(ws []models.Warranty, now types.Date) Breakdown {
	b := Breakdown{
		ActiveValue:       decimal.Zero,
		MissedClaimsValue: decimal.Zero,
		ByCategory:        []CategoryStat{},
		MonthlyExpiring:   []MonthStat{},
	}

	categories := map[string]*CategoryStat{}
	months := map[string]int{}
	horizon := types.NewDate(now.Year(), now.Month(), 1).AddMonths(12)

	for _, w := range ws {
		cost := amount(w.PurchaseCost)
		if DaysBetween(now, w.WarrantyEnd) < 0 {
			if !w.ClaimFiled {
				b.MissedClaimsValue = b.MissedClaimsValue.Add(cost)
			}
			continue
		}

		b.ActiveValue = b.ActiveValue.Add(cost)

		name := stringValue(w.Category)
		if name == "" {
			name = uncategorized
		}
		stat, ok := categories[name]
		if !ok {
			stat = &CategoryStat{Category: name, Value: decimal.Zero}
			categories[name] = stat
		}
		stat.Count++
		stat.Value = stat.Value.Add(cost)

		if w.WarrantyEnd.Before(horizon) {
			months[w.WarrantyEnd.Time().Format("2006-01")]++
		}
	}

	for _, stat := range categories {
		b.ByCategory = append(b.ByCategory, *stat)
	}
	sort.Slice(b.ByCategory, func(i, j int) bool {
		if b.ByCategory[i].Count != b.ByCategory[j].Count {
			return b.ByCategory[i].Count > b.ByCategory[j].Count
		}
		return b.ByCategory[i].Category < b.ByCategory[j].Category
	})

	for month, count := range months {
		b.MonthlyExpiring = append(b.MonthlyExpiring, MonthStat{Month: month, Count: count})
	}
	sort.Slice(b.MonthlyExpiring, func(i, j int) bool {
		return b.MonthlyExpiring[i].Month < b.MonthlyExpiring[j].Month
	})
	return b
}

func amount(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}
