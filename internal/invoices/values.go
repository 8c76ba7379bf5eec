package invoices

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
)

var columnAliases = map[string]string{
	"product":   "product_name",
	"name":      "product_name",
	"serial":    "serial_number",
	"vendor":    "supplier",
	"cost":      "purchase_cost",
	"price":     "purchase_cost",
	"months":    "warranty_length_months",
	"purchased": "purchase_date",
}

// NormalizeColumn lowercases a header and replaces whitespace runs with "_".
func NormalizeColumn(name string) string {
	key := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	if alias, ok := columnAliases[key]; ok {
		return alias
	}
	return key
}

// inputFromValues maps column or form values onto a create input. Unknown keys
// are ignored and blank values count as absent.
func inputFromValues(values map[string]string) (warranties.CreateInput, error) {
	var in warranties.CreateInput
	for rawKey, rawValue := range values {
		value := strings.TrimSpace(rawValue)
		if value == "" {
			continue
		}
		v := value
		switch NormalizeColumn(rawKey) {
		case "product_name":
			in.ProductName = v
		case "category":
			in.Category = &v
		case "serial_number":
			in.SerialNumber = &v
		case "supplier":
			in.Supplier = &v
		case "notes":
			in.Notes = &v
		case "location":
			in.Location = &v
		case "department":
			in.Department = &v
		case "invoice_url":
			in.InvoiceURL = &v
		case "purchase_date":
			in.PurchaseDate = v
		case "warranty_start":
			in.WarrantyStart = v
		case "warranty_end":
			in.WarrantyEnd = v
		case "claim_date":
			in.ClaimDate = v
		case "claim_description":
			in.ClaimDescription = &v
		case "warranty_length_months":
			n, err := strconv.Atoi(v)
			if err != nil {
				return in, pkgerrors.Field("warranty_length_months", "warranty_length_months must be a whole number")
			}
			in.WarrantyLengthMonths = &n
		case "purchase_cost":
			d, err := parseMoney(v)
			if err != nil {
				return in, pkgerrors.Field("purchase_cost", "purchase_cost must be a number")
			}
			in.PurchaseCost = &d
		case "claim_amount":
			d, err := parseMoney(v)
			if err != nil {
				return in, pkgerrors.Field("claim_amount", "claim_amount must be a number")
			}
			in.ClaimAmount = &d
		case "claim_filed":
			filed, err := strconv.ParseBool(strings.ToLower(v))
			if err != nil {
				filed = strings.EqualFold(v, "yes") || strings.EqualFold(v, "y")
			}
			in.ClaimFiled = filed
		}
	}
	return in, nil
}

func parseMoney(v string) (decimal.Decimal, error) {
	v = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(v), "$"), ",", "")
	return decimal.NewFromString(v)
}
