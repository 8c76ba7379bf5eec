package insights

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

const (
	SourceLLM   = "llm"
	SourceRules = "rules"
)

// Assessment is a warranty risk evaluation.
type Assessment struct {
	RiskScore      int
	Insight        string
	Recommendation string
	Source         string
}

var errNoAssessment = errors.New("completion held no usable assessment")

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// Fallback scores risk from the days left on the warranty alone.
func Fallback(w models.Warranty, today types.Date) Assessment {
	days := warranties.DaysBetween(today, w.WarrantyEnd)
	a := Assessment{Source: SourceRules}
	switch {
	case days < 0:
		a.RiskScore = 100
		a.Insight = "This warranty has already expired. Any repair costs will be out-of-pocket."
		a.Recommendation = "Consider purchasing an extended warranty if available, or budget for potential repair costs."
	case days <= 30:
		a.RiskScore = 80
		a.Insight = fmt.Sprintf("Warranty expires in %d days. High-risk period for missing valuable coverage.", days)
		a.Recommendation = "Schedule preventive maintenance immediately to catch any issues before warranty expires."
	case days <= 90:
		a.RiskScore = 50
		a.Insight = fmt.Sprintf("Warranty expires in %d days. Good time to plan preventive maintenance.", days)
		a.Recommendation = "Schedule inspection within the next month to ensure warranty can be used if needed."
	default:
		a.RiskScore = 20
		a.Insight = fmt.Sprintf("Warranty coverage is secure for %d more days.", days)
		a.Recommendation = "Monitor regularly and schedule maintenance 60 days before expiration."
	}
	return a
}

const systemPrompt = "You are a warranty risk assessment expert. Provide analysis in JSON format only."

// Prompt describes the warranty and asks for a JSON risk assessment.
func Prompt(w models.Warranty, today types.Date) string {
	category := "Uncategorized"
	if w.Category != nil && *w.Category != "" {
		category = *w.Category
	}
	cost := "unknown"
	if w.PurchaseCost.Valid {
		cost = "$" + w.PurchaseCost.Decimal.StringFixed(2)
	}

	var b strings.Builder
	b.WriteString("Analyze this equipment warranty and provide a risk assessment:\n\n")
	fmt.Fprintf(&b, "Equipment: %s\n", w.ProductName)
	fmt.Fprintf(&b, "Category: %s\n", category)
	fmt.Fprintf(&b, "Purchase Date: %s\n", w.PurchaseDate)
	fmt.Fprintf(&b, "Warranty End: %s\n", w.WarrantyEnd)
	fmt.Fprintf(&b, "Cost: %s\n", cost)
	fmt.Fprintf(&b, "Current Date: %s\n\n", today)
	b.WriteString("Consider:\n1. How close to warranty expiration?\n2. Equipment category failure rates\n3. Value at risk if warranty expires unused\n\n")
	b.WriteString("Provide:\n1. Risk score (0-100)\n2. Brief insight (2-3 sentences)\n3. Recommended action\n\n")
	b.WriteString("Format your response as JSON:\n{\n  \"risk_score\": <number>,\n  \"insight\": \"<string>\",\n  \"recommendation\": \"<string>\"\n}")
	return b.String()
}

// ParseAssessment reads the first JSON object in a completion, tolerating
// markdown fences around it. Scores are clamped to 0..100.
func ParseAssessment(content string) (Assessment, error) {
	raw := jsonObject.FindString(content)
	if raw == "" {
		return Assessment{}, errNoAssessment
	}
	var payload struct {
		RiskScore      *float64 `json:"risk_score"`
		Insight        string   `json:"insight"`
		Recommendation string   `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Assessment{}, fmt.Errorf("decode assessment: %w", err)
	}
	if payload.RiskScore == nil || strings.TrimSpace(payload.Insight) == "" {
		return Assessment{}, errNoAssessment
	}
	score := int(math.Round(*payload.RiskScore))
	score = max(0, min(100, score))
	return Assessment{
		RiskScore:      score,
		Insight:        strings.TrimSpace(payload.Insight),
		Recommendation: strings.TrimSpace(payload.Recommendation),
		Source:         SourceLLM,
	}, nil
}
