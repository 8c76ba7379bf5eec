package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// Warranty is a tracked product warranty. Status is derived from WarrantyEnd
// and is never stored.
type Warranty struct {
	ID                   int64               `gorm:"column:id;primaryKey;autoIncrement"`
	ProductName          string              `gorm:"column:product_name;not null"`
	Category             *string             `gorm:"column:category"`
	SerialNumber         *string             `gorm:"column:serial_number"`
	Supplier             *string             `gorm:"column:supplier"`
	Notes                *string             `gorm:"column:notes"`
	InvoiceURL           *string             `gorm:"column:invoice_url"`
	Location             *string             `gorm:"column:location"`
	Department           *string             `gorm:"column:department"`
	PurchaseDate         types.Date          `gorm:"column:purchase_date;type:date;not null"`
	WarrantyStart        types.Date          `gorm:"column:warranty_start;type:date;not null"`
	WarrantyEnd          types.Date          `gorm:"column:warranty_end;type:date;not null"`
	WarrantyLengthMonths *int                `gorm:"column:warranty_length_months"`
	PurchaseCost         decimal.NullDecimal `gorm:"column:purchase_cost;type:numeric(12,2)"`
	ClaimFiled           bool                `gorm:"column:claim_filed;not null;default:false"`
	ClaimDate            *types.Date         `gorm:"column:claim_date;type:date"`
	ClaimAmount          decimal.NullDecimal `gorm:"column:claim_amount;type:numeric(12,2)"`
	ClaimDescription     *string             `gorm:"column:claim_description"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Warranty) TableName() string { return "warranties" }
