package warranties

import (
	"strings"

	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
)

// Filter narrows a warranty listing. Zero values match everything.
type Filter struct {
	Status   enums.WarrantyStatus
	Query    string
	Category string
	Supplier string
}

// Matches reports whether r passes every populated criterion. The query is a
// case-insensitive substring match over product name, serial number, supplier
// and category.
func (f Filter) Matches(r Record) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Category != "" && stringValue(r.Category) != f.Category {
		return false
	}
	if f.Supplier != "" && stringValue(r.Supplier) != f.Supplier {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(searchText(r), q)
}

// Apply returns the records that match f, preserving order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func searchText(r Record) string {
	return strings.ToLower(strings.Join([]string{
		r.ProductName,
		stringValue(r.SerialNumber),
		stringValue(r.Supplier),
		stringValue(r.Category),
	}, " "))
}
