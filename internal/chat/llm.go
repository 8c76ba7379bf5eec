package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/llm"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

const (
	contextWarrantyLimit = 20
	apiKeyApology        = "I'm having trouble connecting to my AI service. Please check that the API key for the configured AI provider is set correctly."
	serviceApology       = "I'm sorry, I'm having trouble processing your request right now. Please try again."
)

// LLMOptions tunes completion calls.
type LLMOptions struct {
	Temperature float64
	MaxTokens   int
}

// LLMResponder forwards the conversation to a completion provider with a
// system prompt describing the current warranty set. Provider failures become
// apology replies, never errors.
type LLMResponder struct {
	source    warrantySource
	completer llm.Completer
	opts      LLMOptions
	logg      *logger.Logger
}

// NewLLMResponder builds the responder.
func NewLLMResponder(source warrantySource, completer llm.Completer, opts LLMOptions, logg *logger.Logger) (*LLMResponder, error) {
	if source == nil {
		return nil, fmt.Errorf("warranty source required")
	}
	if completer == nil {
		return nil, fmt.Errorf("llm completer required")
	}
	return &LLMResponder{source: source, completer: completer, opts: opts, logg: logg}, nil
}

func (r *LLMResponder) Name() string { return "llm" }

func (r *LLMResponder) Respond(ctx context.Context, req Request) (*Reply, error) {
	rows, today, err := r.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})

	text, err := r.completer.Complete(ctx, llm.Request{
		System:      BuildContext(rows, today),
		Messages:    messages,
		Temperature: r.opts.Temperature,
		MaxTokens:   r.opts.MaxTokens,
	})
	if err != nil {
		if r.logg != nil {
			r.logg.Error(ctx, "chat.llm_failed", err)
		}
		if llm.IsUnauthorized(err) {
			return &Reply{Text: apiKeyApology, ErrorCode: ErrorCodeAPIKey}, nil
		}
		return &Reply{Text: serviceApology, ErrorCode: ErrorCodeService}, nil
	}
	if text == "" {
		text = "No response generated"
	}
	return &Reply{Text: text}, nil
}

// BuildContext renders the system prompt: role, portfolio summary and up to
// twenty warranties.
func BuildContext(rows []models.Warranty, today types.Date) string {
	s := warranties.Summarize(rows, today)

	var b strings.Builder
	b.WriteString("You are WarrantyWizard AI Assistant, an expert in warranty management for enterprises.\n\n")
	fmt.Fprintf(&b, "Today is %s.\n\n", today)
	b.WriteString("Current Warranty Database Summary:\n")
	fmt.Fprintf(&b, "- Total Warranties: %d\n", s.Totals.Total)
	fmt.Fprintf(&b, "- Active Warranties: %d\n", s.Totals.Active)
	fmt.Fprintf(&b, "- Expiring Soon (30 days): %d\n", s.Totals.Expiring)
	fmt.Fprintf(&b, "- Expired: %d\n", s.Totals.Expired)
	fmt.Fprintf(&b, "- Total Value: %s\n", formatMoney(s.CoverageValue))
	fmt.Fprintf(&b, "- Claims Filed: %d\n", s.Claims.Filed)
	fmt.Fprintf(&b, "- Total Claims Value: %s\n\n", formatMoney(s.Claims.TotalClaimAmount))

	limit := len(rows)
	if limit > contextWarrantyLimit {
		limit = contextWarrantyLimit
	}
	b.WriteString("Warranty Details:\n")
	for _, w := range rows[:limit] {
		rec := warranties.Evaluate(w, today, warranties.DefaultExpiringThresholdDays)
		fmt.Fprintf(&b, "- %s (%s)\n", rec.ProductName, orUnknown(rec.Category))
		fmt.Fprintf(&b, "  Serial: %s\n", orUnknown(rec.SerialNumber))
		fmt.Fprintf(&b, "  Purchased: %s\n", rec.PurchaseDate)
		fmt.Fprintf(&b, "  Warranty Ends: %s\n", rec.WarrantyEnd)
		fmt.Fprintf(&b, "  Status: %s\n", statusLabel(rec.Status))
		if rec.PurchaseCost.Valid {
			fmt.Fprintf(&b, "  Cost: %s\n", formatMoney(rec.PurchaseCost.Decimal))
		}
		fmt.Fprintf(&b, "  Claim Filed: %s\n", yesNo(rec.ClaimFiled))
	}

	b.WriteString("\nYour role:\n")
	b.WriteString("1. Answer questions about warranties in the system\n")
	b.WriteString("2. Provide insights and recommendations\n")
	b.WriteString("3. Help users understand warranty status and value\n")
	b.WriteString("4. Suggest actions to maximize warranty benefits\n")
	b.WriteString("5. Be concise but helpful\n\n")
	b.WriteString("Base all answers on the data above. Don't make up information.")
	return b.String()
}

func statusLabel(s enums.WarrantyStatus) string {
	switch s {
	case enums.WarrantyStatusExpired:
		return "EXPIRED"
	case enums.WarrantyStatusExpiringSoon:
		return "EXPIRING SOON"
	default:
		return "Active"
	}
}

func orUnknown(s *string) string {
	if s == nil {
		return "unknown"
	}
	return *s
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
