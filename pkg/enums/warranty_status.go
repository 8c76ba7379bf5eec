package enums

import "fmt"

// WarrantyStatus is the derived lifecycle state of a warranty.
type WarrantyStatus string

const (
	WarrantyStatusActive       WarrantyStatus = "active"
	WarrantyStatusExpiringSoon WarrantyStatus = "expiring_soon"
	WarrantyStatusExpired      WarrantyStatus = "expired"
)

var validWarrantyStatuses = []WarrantyStatus{
	WarrantyStatusActive,
	WarrantyStatusExpiringSoon,
	WarrantyStatusExpired,
}

// String implements fmt.Stringer.
func (w WarrantyStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is one of the known WarrantyStatus values.
func (w WarrantyStatus) IsValid() bool {
	for _, candidate := range validWarrantyStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWarrantyStatus converts raw input into WarrantyStatus.
func ParseWarrantyStatus(value string) (WarrantyStatus, error) {
	for _, candidate := range validWarrantyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid warranty status %q", value)
}
