package warranties

import (
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// Record is a warranty paired with its status as of a given day.
type Record struct {
	models.Warranty
	Status          enums.WarrantyStatus
	DaysUntilExpiry int
}

// Evaluate derives the status fields of w for now.
func Evaluate(w models.Warranty, now types.Date, thresholdDays int) Record {
	return Record{
		Warranty:        w,
		Status:          ComputeStatus(w.WarrantyEnd, now, thresholdDays),
		DaysUntilExpiry: DaysBetween(now, w.WarrantyEnd),
	}
}

// EvaluateAll evaluates every warranty against the same day and threshold.
func EvaluateAll(ws []models.Warranty, now types.Date, thresholdDays int) []Record {
	out := make([]Record, 0, len(ws))
	for _, w := range ws {
		out = append(out, Evaluate(w, now, thresholdDays))
	}
	return out
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
