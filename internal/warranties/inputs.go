package warranties

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// CreateInput holds the raw values for a new warranty. Dates accept any form
// NormalizeDate understands. WarrantyEnd may be omitted when
// WarrantyLengthMonths is set.
type CreateInput struct {
	ProductName          string
	Category             *string
	SerialNumber         *string
	Supplier             *string
	Notes                *string
	InvoiceURL           *string
	Location             *string
	Department           *string
	PurchaseDate         string
	WarrantyStart        string
	WarrantyEnd          string
	WarrantyLengthMonths *int
	PurchaseCost         *decimal.Decimal
	ClaimFiled           bool
	ClaimDate            string
	ClaimAmount          *decimal.Decimal
	ClaimDescription     *string
}

// UpdateInput is a field-level patch. Nil fields are left untouched; an empty
// string clears an optional text field or the claim date.
type UpdateInput struct {
	ProductName          *string
	Category             *string
	SerialNumber         *string
	Supplier             *string
	Notes                *string
	InvoiceURL           *string
	Location             *string
	Department           *string
	PurchaseDate         *string
	WarrantyStart        *string
	WarrantyEnd          *string
	WarrantyLengthMonths *int
	PurchaseCost         *decimal.Decimal
	ClaimFiled           *bool
	ClaimDate            *string
	ClaimAmount          *decimal.Decimal
	ClaimDescription     *string
}

// ClaimInput records a filed claim. ClaimDate defaults to today.
type ClaimInput struct {
	ClaimAmount      decimal.Decimal
	ClaimDescription string
	ClaimDate        string
}

func (in CreateInput) toModel() (*models.Warranty, error) {
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return nil, pkgerrors.Field("product_name", "product_name is required")
	}

	purchase, err := requiredDate("purchase_date", in.PurchaseDate)
	if err != nil {
		return nil, err
	}
	start := purchase
	if strings.TrimSpace(in.WarrantyStart) != "" {
		if start, err = requiredDate("warranty_start", in.WarrantyStart); err != nil {
			return nil, err
		}
	}
	if err := checkMonths(in.WarrantyLengthMonths); err != nil {
		return nil, err
	}

	var end types.Date
	switch {
	case strings.TrimSpace(in.WarrantyEnd) != "":
		if end, err = requiredDate("warranty_end", in.WarrantyEnd); err != nil {
			return nil, err
		}
	case in.WarrantyLengthMonths != nil:
		end = start.AddMonths(*in.WarrantyLengthMonths)
	default:
		return nil, pkgerrors.Field("warranty_end", "warranty_end is required")
	}

	cost, err := money("purchase_cost", in.PurchaseCost)
	if err != nil {
		return nil, err
	}
	claimAmount, err := money("claim_amount", in.ClaimAmount)
	if err != nil {
		return nil, err
	}
	claimDate, err := optionalDate("claim_date", in.ClaimDate)
	if err != nil {
		return nil, err
	}

	months := in.WarrantyLengthMonths
	if months == nil {
		if derived := start.MonthsUntil(end); derived >= 0 {
			months = &derived
		}
	}

	return &models.Warranty{
		ProductName:          name,
		Category:             optionalText(in.Category),
		SerialNumber:         optionalText(in.SerialNumber),
		Supplier:             optionalText(in.Supplier),
		Notes:                optionalText(in.Notes),
		InvoiceURL:           optionalText(in.InvoiceURL),
		Location:             optionalText(in.Location),
		Department:           optionalText(in.Department),
		PurchaseDate:         purchase,
		WarrantyStart:        start,
		WarrantyEnd:          end,
		WarrantyLengthMonths: months,
		PurchaseCost:         cost,
		ClaimFiled:           in.ClaimFiled,
		ClaimDate:            claimDate,
		ClaimAmount:          claimAmount,
		ClaimDescription:     optionalText(in.ClaimDescription),
	}, nil
}

func (in UpdateInput) apply(w *models.Warranty) error {
	if in.ProductName != nil {
		name := strings.TrimSpace(*in.ProductName)
		if name == "" {
			return pkgerrors.Field("product_name", "product_name cannot be empty")
		}
		w.ProductName = name
	}

	patchText(&w.Category, in.Category)
	patchText(&w.SerialNumber, in.SerialNumber)
	patchText(&w.Supplier, in.Supplier)
	patchText(&w.Notes, in.Notes)
	patchText(&w.InvoiceURL, in.InvoiceURL)
	patchText(&w.Location, in.Location)
	patchText(&w.Department, in.Department)
	patchText(&w.ClaimDescription, in.ClaimDescription)

	for _, field := range []struct {
		name   string
		raw    *string
		target *types.Date
	}{
		{"purchase_date", in.PurchaseDate, &w.PurchaseDate},
		{"warranty_start", in.WarrantyStart, &w.WarrantyStart},
		{"warranty_end", in.WarrantyEnd, &w.WarrantyEnd},
	} {
		if field.raw == nil {
			continue
		}
		d, err := requiredDate(field.name, *field.raw)
		if err != nil {
			return err
		}
		*field.target = d
	}

	if in.WarrantyLengthMonths != nil {
		if err := checkMonths(in.WarrantyLengthMonths); err != nil {
			return err
		}
		months := *in.WarrantyLengthMonths
		w.WarrantyLengthMonths = &months
	}
	if in.PurchaseCost != nil {
		cost, err := money("purchase_cost", in.PurchaseCost)
		if err != nil {
			return err
		}
		w.PurchaseCost = cost
	}
	if in.ClaimAmount != nil {
		claimAmount, err := money("claim_amount", in.ClaimAmount)
		if err != nil {
			return err
		}
		w.ClaimAmount = claimAmount
	}
	if in.ClaimDate != nil {
		claimDate, err := optionalDate("claim_date", *in.ClaimDate)
		if err != nil {
			return err
		}
		w.ClaimDate = claimDate
	}
	if in.ClaimFiled != nil {
		w.ClaimFiled = *in.ClaimFiled
	}
	return nil
}

func requiredDate(field, raw string) (types.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return types.Date{}, pkgerrors.Field(field, field+" is required")
	}
	d, err := NormalizeDate(raw)
	if err != nil {
		return types.Date{}, pkgerrors.Field(field, field+" must be a valid date (YYYY-MM-DD, MM/DD/YYYY or DD/MM/YYYY)")
	}
	return d, nil
}

func optionalDate(field, raw string) (*types.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := requiredDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func money(field string, v *decimal.Decimal) (decimal.NullDecimal, error) {
	if v == nil {
		return decimal.NullDecimal{}, nil
	}
	if v.IsNegative() {
		return decimal.NullDecimal{}, pkgerrors.Field(field, field+" must be non-negative")
	}
	return decimal.NewNullDecimal(v.Round(2)), nil
}

func checkMonths(months *int) error {
	if months != nil && *months < 0 {
		return pkgerrors.Field("warranty_length_months", "warranty_length_months must be non-negative")
	}
	return nil
}

func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func patchText(target **string, value *string) {
	if value == nil {
		return
	}
	*target = optionalText(value)
}
