package enums

import "fmt"

// AlertType names the lead time of an expiry alert.
type AlertType string

const (
	AlertType30Day AlertType = "30_day_warning"
	AlertType7Day  AlertType = "7_day_warning"
	AlertType1Day  AlertType = "1_day_warning"
)

var alertLeadDays = map[AlertType]int{
	AlertType30Day: 30,
	AlertType7Day:  7,
	AlertType1Day:  1,
}

// AlertTypes returns the alert types from the longest lead time to the shortest.
func AlertTypes() []AlertType {
	return []AlertType{AlertType30Day, AlertType7Day, AlertType1Day}
}

// AlertTypeForDays returns the alert type for a lead time in days.
func AlertTypeForDays(days int) AlertType {
	return AlertType(fmt.Sprintf("%d_day_warning", days))
}

// LeadDays returns how many days before warranty_end the alert fires.
func (a AlertType) LeadDays() int {
	return alertLeadDays[a]
}

// String implements fmt.Stringer.
func (a AlertType) String() string {
	return string(a)
}

// IsValid reports whether the value is one of the known alert types.
func (a AlertType) IsValid() bool {
	_, ok := alertLeadDays[a]
	return ok
}

// ParseAlertType converts raw input into AlertType.
func ParseAlertType(value string) (AlertType, error) {
	candidate := AlertType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid alert type %q", value)
	}
	return candidate, nil
}
