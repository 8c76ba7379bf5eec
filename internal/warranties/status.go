package warranties

import (
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// DefaultExpiringThresholdDays is the expiring_soon window used for stored
// status and aggregation.
const DefaultExpiringThresholdDays = 30

// DaysBetween returns the whole days from now until end; negative once end has passed.
func DaysBetween(now, end types.Date) int {
	return now.DaysUntil(end)
}

// ComputeStatus derives the status of a warranty ending on end as of now.
// A warranty ending today is expiring_soon, not expired.
func ComputeStatus(end, now types.Date, thresholdDays int) enums.WarrantyStatus {
	if thresholdDays <= 0 {
		thresholdDays = DefaultExpiringThresholdDays
	}
	d := DaysBetween(now, end)
	switch {
	case d < 0:
		return enums.WarrantyStatusExpired
	case d <= thresholdDays:
		return enums.WarrantyStatusExpiringSoon
	default:
		return enums.WarrantyStatusActive
	}
}
