package controllers

import (
	"net/http"

	"github.com/angelmondragon/warrantywizard-backend/api/responses"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

type analyticsResponse struct {
	Totals struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		Expiring int `json:"expiring"`
		Expired  int `json:"expired"`
	} `json:"totals"`
	Claims struct {
		Filed            int     `json:"filed"`
		TotalClaimAmount float64 `json:"total_claim_amount"`
	} `json:"claims"`
	Estimated struct {
		CoverageValue float64 `json:"coverage_value"`
	} `json:"estimated"`
	Breakdown breakdownDTO `json:"breakdown"`
}

type breakdownDTO struct {
	ActiveValue       float64           `json:"active_value"`
	MissedClaimsValue float64           `json:"missed_claims_value"`
	ByCategory        []categoryStatDTO `json:"by_category"`
	MonthlyExpiring   []monthStatDTO    `json:"monthly_expiring"`
}

type categoryStatDTO struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
}

type monthStatDTO struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Analytics returns the dashboard totals, claim figures and breakdown.
func Analytics(svc warranties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		a, err := svc.Analytics(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAnalyticsResponse(a))
	}
}

func toAnalyticsResponse(a *warranties.Analytics) analyticsResponse {
	var resp analyticsResponse
	resp.Totals.Total = a.Totals.Total
	resp.Totals.Active = a.Totals.Active
	resp.Totals.Expiring = a.Totals.Expiring
	resp.Totals.Expired = a.Totals.Expired
	resp.Claims.Filed = a.Claims.Filed
	resp.Claims.TotalClaimAmount = money(a.Claims.TotalClaimAmount)
	resp.Estimated.CoverageValue = money(a.CoverageValue)

	resp.Breakdown = breakdownDTO{
		ActiveValue:       money(a.Breakdown.ActiveValue),
		MissedClaimsValue: money(a.Breakdown.MissedClaimsValue),
		ByCategory:        make([]categoryStatDTO, 0, len(a.Breakdown.ByCategory)),
		MonthlyExpiring:   make([]monthStatDTO, 0, len(a.Breakdown.MonthlyExpiring)),
	}
	for _, c := range a.Breakdown.ByCategory {
		resp.Breakdown.ByCategory = append(resp.Breakdown.ByCategory, categoryStatDTO{
			Category: c.Category,
			Count:    c.Count,
			Value:    money(c.Value),
		})
	}
	for _, m := range a.Breakdown.MonthlyExpiring {
		resp.Breakdown.MonthlyExpiring = append(resp.Breakdown.MonthlyExpiring, monthStatDTO{Month: m.Month, Count: m.Count})
	}
	return resp
}
