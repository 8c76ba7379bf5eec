package chat

import (
	"context"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/llm"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// Error codes reported alongside an apology reply.
const (
	ErrorCodeAPIKey  = "API_KEY_ERROR"
	ErrorCodeService = "SERVICE_ERROR"
)

type warrantySource interface {
	Snapshot(ctx context.Context) ([]models.Warranty, types.Date, error)
}

// Request is one user turn plus the prior conversation.
type Request struct {
	Message string
	History []llm.Message
}

// CompactWarranty is the trimmed warranty shape attached to chat replies.
type CompactWarranty struct {
	ID              int64                `json:"id"`
	ProductName     string               `json:"product_name"`
	Category        *string              `json:"category"`
	Supplier        *string              `json:"supplier"`
	SerialNumber    *string              `json:"serial_number"`
	WarrantyEnd     types.Date           `json:"warranty_end"`
	Status          enums.WarrantyStatus `json:"status"`
	DaysUntilExpiry int                  `json:"days_until_expiry"`
}

// ExpiringData lists the warranties an expiry question matched.
type ExpiringData struct {
	Days     int               `json:"days"`
	Expiring []CompactWarranty `json:"expiring"`
}

// MatchData lists the warranties a product question matched.
type MatchData struct {
	Matches []CompactWarranty `json:"matches"`
}

// CountData carries the status totals behind a count answer.
type CountData struct {
	Totals Counts `json:"totals"`
}

// Counts mirrors the analytics status totals.
type Counts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
}

// Reply is the assistant's answer. ErrorCode is set when the reply is an
// apology for an upstream failure.
type Reply struct {
	Text      string
	Data      any
	ErrorCode string
}

// Responder answers a chat message against the current warranty set.
type Responder interface {
	Name() string
	Respond(ctx context.Context, req Request) (*Reply, error)
}

func compact(r warranties.Record) CompactWarranty {
	return CompactWarranty{
		ID:              r.ID,
		ProductName:     r.ProductName,
		Category:        r.Category,
		Supplier:        r.Supplier,
		SerialNumber:    r.SerialNumber,
		WarrantyEnd:     r.WarrantyEnd,
		Status:          r.Status,
		DaysUntilExpiry: r.DaysUntilExpiry,
	}
}
