package invoices

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// Fields are the warranty attributes found in invoice text. Nil means not found.
type Fields struct {
	ProductName          *string
	SerialNumber         *string
	PurchaseDate         *types.Date
	WarrantyLengthMonths *int
	PurchaseCost         *decimal.Decimal
	Supplier             *string
}

var (
	productRe  = regexp.MustCompile(`(?im)^[ \t]*(?:product(?:[ \t]+name)?|item|equipment|description|model)[ \t]*[:#-][ \t]*(\S[^\r\n]*)$`)
	serialRe   = regexp.MustCompile(`(?i)\b(?:serial(?:[ \t]+(?:number|no\.?|#))?|s/n)[ \t]*[:#]?[ \t]*([A-Z0-9][A-Z0-9\-/]{2,})`)
	dateRe     = regexp.MustCompile(`(?i)\b(?:purchase[ \t]+date|invoice[ \t]+date|date[ \t]+of[ \t]+purchase|purchased(?:[ \t]+on)?|date)[ \t]*[:#-]?[ \t]*(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})`)
	warrantyRe = regexp.MustCompile(`(?i)\bwarranty(?:[ \t]+(?:period|length|term|coverage))?[ \t]*[:#-]?[ \t]*(\d{1,3})[ \t-]*(months?|mos?|years?|yrs?)\b`)
	termRe     = regexp.MustCompile(`(?i)\b(\d{1,3})[ \t-]*(months?|years?|yrs?)[ \t]+(?:limited[ \t]+)?warranty\b`)
	costRe     = regexp.MustCompile(`(?i)\b(?:total(?:[ \t]+due)?|amount(?:[ \t]+due)?|grand[ \t]+total|price|purchase[ \t]+cost|cost)[ \t]*[:#-]?[ \t]*(?:USD[ \t]*)?\$?[ \t]*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	supplierRe = regexp.MustCompile(`(?im)^[ \t]*(?:supplier|vendor|sold[ \t]+by|seller|merchant)[ \t]*[:#-][ \t]*(\S[^\r\n]*)$`)
)

// ExtractFields pulls warranty attributes out of free invoice text. The first
// match of each pattern wins.
func ExtractFields(text string) Fields {
	var f Fields

	if m := productRe.FindStringSubmatch(text); m != nil {
		f.ProductName = trimmed(m[1])
	}
	if m := serialRe.FindStringSubmatch(text); m != nil {
		f.SerialNumber = trimmed(m[1])
	}
	if m := dateRe.FindStringSubmatch(text); m != nil {
		if d, err := warranties.NormalizeDate(m[1]); err == nil {
			f.PurchaseDate = &d
		}
	}

	m := warrantyRe.FindStringSubmatch(text)
	if m == nil {
		m = termRe.FindStringSubmatch(text)
	}
	if m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if strings.HasPrefix(strings.ToLower(m[2]), "y") {
				n *= 12
			}
			f.WarrantyLengthMonths = &n
		}
	}

	if m := costRe.FindStringSubmatch(text); m != nil {
		if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
			f.PurchaseCost = &d
		}
	}
	if m := supplierRe.FindStringSubmatch(text); m != nil {
		f.Supplier = trimmed(m[1])
	}
	return f
}

// Empty reports whether nothing was extracted.
func (f Fields) Empty() bool {
	return f.ProductName == nil && f.SerialNumber == nil && f.PurchaseDate == nil &&
		f.WarrantyLengthMonths == nil && f.PurchaseCost == nil && f.Supplier == nil
}

func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
