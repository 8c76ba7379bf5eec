package controllers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/internal/invoices"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// warrantyDTO is the wire shape of a warranty. Money is a JSON number.
type warrantyDTO struct {
	ID                   int64                `json:"id"`
	ProductName          string               `json:"product_name"`
	Category             *string              `json:"category"`
	SerialNumber         *string              `json:"serial_number"`
	Supplier             *string              `json:"supplier"`
	Notes                *string              `json:"notes"`
	InvoiceURL           *string              `json:"invoice_url"`
	Location             *string              `json:"location"`
	Department           *string              `json:"department"`
	PurchaseDate         types.Date           `json:"purchase_date"`
	WarrantyStart        types.Date           `json:"warranty_start"`
	WarrantyEnd          types.Date           `json:"warranty_end"`
	WarrantyLengthMonths *int                 `json:"warranty_length_months"`
	PurchaseCost         *float64             `json:"purchase_cost"`
	Status               enums.WarrantyStatus `json:"status"`
	DaysUntilExpiry      int                  `json:"days_until_expiry"`
	ClaimFiled           bool                 `json:"claim_filed"`
	ClaimDate            *types.Date          `json:"claim_date"`
	ClaimAmount          *float64             `json:"claim_amount"`
	ClaimDescription     *string              `json:"claim_description"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

func toWarrantyDTO(r warranties.Record) warrantyDTO {
	w := r.Warranty
	return warrantyDTO{
		ID:                   w.ID,
		ProductName:          w.ProductName,
		Category:             w.Category,
		SerialNumber:         w.SerialNumber,
		Supplier:             w.Supplier,
		Notes:                w.Notes,
		InvoiceURL:           w.InvoiceURL,
		Location:             w.Location,
		Department:           w.Department,
		PurchaseDate:         w.PurchaseDate,
		WarrantyStart:        w.WarrantyStart,
		WarrantyEnd:          w.WarrantyEnd,
		WarrantyLengthMonths: w.WarrantyLengthMonths,
		PurchaseCost:         nullMoney(w.PurchaseCost),
		Status:               r.Status,
		DaysUntilExpiry:      r.DaysUntilExpiry,
		ClaimFiled:           w.ClaimFiled,
		ClaimDate:            w.ClaimDate,
		ClaimAmount:          nullMoney(w.ClaimAmount),
		ClaimDescription:     w.ClaimDescription,
		CreatedAt:            w.CreatedAt,
		UpdatedAt:            w.UpdatedAt,
	}
}

func toWarrantyDTOs(records []warranties.Record) []warrantyDTO {
	out := make([]warrantyDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toWarrantyDTO(r))
	}
	return out
}

type alertDTO struct {
	ID          int64           `json:"id"`
	WarrantyID  int64           `json:"warranty_id"`
	AlertType   enums.AlertType `json:"alert_type"`
	AlertDate   types.Date      `json:"alert_date"`
	Sent        bool            `json:"sent"`
	SentAt      *time.Time      `json:"sent_at"`
	CreatedAt   time.Time       `json:"created_at"`
	ProductName string          `json:"product_name,omitempty"`
	Category    *string         `json:"category,omitempty"`
	WarrantyEnd *types.Date     `json:"warranty_end,omitempty"`
}

func toAlertDTO(a models.Alert) alertDTO {
	return alertDTO{
		ID:         a.ID,
		WarrantyID: a.WarrantyID,
		AlertType:  a.AlertType,
		AlertDate:  a.AlertDate,
		Sent:       a.Sent,
		SentAt:     a.SentAt,
		CreatedAt:  a.CreatedAt,
	}
}

func toAlertDTOs(rows []models.Alert) []alertDTO {
	out := make([]alertDTO, 0, len(rows))
	for _, a := range rows {
		out = append(out, toAlertDTO(a))
	}
	return out
}

func toEntryDTOs(entries []alerts.Entry) []alertDTO {
	out := make([]alertDTO, 0, len(entries))
	for _, e := range entries {
		dto := toAlertDTO(e.Alert)
		end := e.WarrantyEnd
		dto.ProductName = e.ProductName
		dto.Category = e.Category
		dto.WarrantyEnd = &end
		out = append(out, dto)
	}
	return out
}

type insightDTO struct {
	ID              int64     `json:"id"`
	WarrantyID      int64     `json:"warranty_id"`
	InsightType     string    `json:"insight_type"`
	ConfidenceScore float64   `json:"confidence_score"`
	RiskScore       int       `json:"risk_score"`
	Message         string    `json:"message"`
	Recommendation  *string   `json:"recommendation"`
	CreatedAt       time.Time `json:"created_at"`
}

func toInsightDTO(i models.AIInsight) insightDTO {
	return insightDTO{
		ID:              i.ID,
		WarrantyID:      i.WarrantyID,
		InsightType:     i.InsightType,
		ConfidenceScore: i.ConfidenceScore,
		RiskScore:       i.RiskScore,
		Message:         i.Message,
		Recommendation:  i.Recommendation,
		CreatedAt:       i.CreatedAt,
	}
}

type chatMessageDTO struct {
	Role      enums.ChatRole `json:"role"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// fieldsDTO is what invoice extraction found. Absent values are null.
type fieldsDTO struct {
	ProductName          *string     `json:"product_name"`
	SerialNumber         *string     `json:"serial_number"`
	PurchaseDate         *types.Date `json:"purchase_date"`
	WarrantyLengthMonths *int        `json:"warranty_length_months"`
	PurchaseCost         *float64    `json:"purchase_cost"`
	Supplier             *string     `json:"supplier"`
}

func toFieldsDTO(f invoices.Fields) fieldsDTO {
	dto := fieldsDTO{
		ProductName:          f.ProductName,
		SerialNumber:         f.SerialNumber,
		PurchaseDate:         f.PurchaseDate,
		WarrantyLengthMonths: f.WarrantyLengthMonths,
		Supplier:             f.Supplier,
	}
	if f.PurchaseCost != nil {
		v := f.PurchaseCost.InexactFloat64()
		dto.PurchaseCost = &v
	}
	return dto
}

func nullMoney(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
