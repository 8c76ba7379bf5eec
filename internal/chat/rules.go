package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

const (
	maxListedItems   = 10
	maxMatchedItems  = 5
	minProductWord   = 3
	claimHelpReply   = "To file a warranty claim: (1) open the item's details, (2) confirm it's still active, (3) gather the invoice and serial number, (4) contact the supplier or manufacturer, and (5) record the claim amount and date. If you tell me the item name, I can list what we already have on file."
	defaultHelpReply = "I can help with: (1) what expires soon, (2) how to file a claim, (3) counts and analytics, (4) what your equipment is worth, and (5) details about a specific item. Try: \"Which items expire next month?\""
)

// RuleBasedResponder answers from keyword rules. The first matching rule wins:
// expiry, claim filing, counts, cost, product name, then the help text.
type RuleBasedResponder struct {
	source warrantySource
}

// NewRuleBasedResponder builds a responder over the given warranty source.
func NewRuleBasedResponder(source warrantySource) *RuleBasedResponder {
	return &RuleBasedResponder{source: source}
}

func (r *RuleBasedResponder) Name() string { return "rules" }

func (r *RuleBasedResponder) Respond(ctx context.Context, req Request) (*Reply, error) {
	rows, today, err := r.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Answer(req.Message, rows, today), nil
}

// Answer applies the keyword rules to message. It does not touch storage.
func Answer(message string, rows []models.Warranty, today types.Date) *Reply {
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "expir"):
		return expiringReply(msg, rows, today)
	case containsAny(msg, "claim", "file"):
		return &Reply{Text: claimHelpReply}
	case containsAny(msg, "how many", "count", "total", "analytics", "summary"):
		return countReply(msg, rows, today)
	case containsAny(msg, "cost", "value", "worth", "spend", "$"):
		return valueReply(rows, today)
	}

	if matches := productMatches(msg, rows, today); len(matches) > 0 {
		return productReply(matches)
	}
	return &Reply{Text: defaultHelpReply}
}

// expiryWindow reads the look-ahead from the message: a week when it mentions
// 7 days, otherwise a month.
func expiryWindow(msg string) int {
	switch {
	case containsAny(msg, "next month", "30"):
		return 30
	case containsAny(msg, "7", "week"):
		return 7
	default:
		return 30
	}
}

func expiringReply(msg string, rows []models.Warranty, today types.Date) *Reply {
	days := expiryWindow(msg)
	records := warranties.Expiring(rows, today, days)
	if len(records) > maxListedItems {
		records = records[:maxListedItems]
	}

	data := ExpiringData{Days: days, Expiring: make([]CompactWarranty, 0, len(records))}
	if len(records) == 0 {
		return &Reply{
			Text: fmt.Sprintf("I don't see any warranties expiring in the next %d days.", days),
			Data: data,
		}
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("- %s (expires %s)", rec.ProductName, rec.WarrantyEnd))
		data.Expiring = append(data.Expiring, compact(rec))
	}
	return &Reply{
		Text: fmt.Sprintf("You have %d item(s) expiring in the next %d days:\n%s", len(records), days, strings.Join(lines, "\n")),
		Data: data,
	}
}

func countReply(msg string, rows []models.Warranty, today types.Date) *Reply {
	s := warranties.Summarize(rows, today)
	data := CountData{Totals: Counts{
		Total:    s.Totals.Total,
		Active:   s.Totals.Active,
		Expiring: s.Totals.Expiring,
		Expired:  s.Totals.Expired,
	}}

	if strings.Contains(msg, "active") {
		return &Reply{Text: fmt.Sprintf("You currently have %d active warranties.", s.Totals.Active), Data: data}
	}
	return &Reply{
		Text: fmt.Sprintf(
			"You are tracking %d warranties: %d active, %d expiring soon and %d expired. %d claim(s) filed totalling %s.",
			s.Totals.Total, s.Totals.Active, s.Totals.Expiring, s.Totals.Expired,
			s.Claims.Filed, formatMoney(s.Claims.TotalClaimAmount),
		),
		Data: data,
	}
}

func valueReply(rows []models.Warranty, today types.Date) *Reply {
	s := warranties.Summarize(rows, today)
	b := warranties.BuildBreakdown(rows, today)
	return &Reply{Text: fmt.Sprintf(
		"Your tracked equipment is worth %s in total. %s of it is still under warranty, and %s sits on expired warranties with no claim filed.",
		formatMoney(s.CoverageValue), formatMoney(b.ActiveValue), formatMoney(b.MissedClaimsValue),
	)}
}

func productMatches(msg string, rows []models.Warranty, today types.Date) []warranties.Record {
	var out []warranties.Record
	for _, w := range rows {
		for _, word := range productWords(w.ProductName) {
			if strings.Contains(msg, word) {
				out = append(out, warranties.Evaluate(w, today, warranties.DefaultExpiringThresholdDays))
				break
			}
		}
		if len(out) == maxMatchedItems {
			break
		}
	}
	return out
}

func productWords(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minProductWord {
			out = append(out, f)
		}
	}
	return out
}

func productReply(matches []warranties.Record) *Reply {
	data := MatchData{Matches: make([]CompactWarranty, 0, len(matches))}
	lines := make([]string, 0, len(matches))
	for _, rec := range matches {
		lines = append(lines, describe(rec))
		data.Matches = append(data.Matches, compact(rec))
	}
	return &Reply{Text: strings.Join(lines, "\n"), Data: data}
}

func describe(rec warranties.Record) string {
	var b strings.Builder
	b.WriteString(rec.ProductName)
	if rec.SerialNumber != nil {
		fmt.Fprintf(&b, " (serial %s)", *rec.SerialNumber)
	}
	switch rec.Status {
	case enums.WarrantyStatusExpired:
		fmt.Fprintf(&b, ": warranty expired on %s.", rec.WarrantyEnd)
	case enums.WarrantyStatusExpiringSoon:
		fmt.Fprintf(&b, ": warranty expires soon, on %s (%d days left).", rec.WarrantyEnd, rec.DaysUntilExpiry)
	default:
		fmt.Fprintf(&b, ": warranty is active until %s.", rec.WarrantyEnd)
	}
	if rec.ClaimFiled {
		b.WriteString(" A claim has been filed.")
	}
	return b.String()
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// formatMoney renders a dollar amount with thousands separators.
func formatMoney(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%s", sign, b.String(), frac)
}
