package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/warrantywizard-backend/api/responses"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

type insightService interface {
	Generate(ctx context.Context, warrantyID int64) (*models.AIInsight, error)
	List(ctx context.Context, warrantyID int64) ([]models.AIInsight, error)
}

type insightResponse struct {
	Insight insightDTO `json:"insight"`
}

type insightListResponse struct {
	Count    int          `json:"count"`
	Insights []insightDTO `json:"insights"`
}

// WarrantyInsightGenerate scores a warranty's risk and stores the result.
func WarrantyInsightGenerate(svc insightService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := warrantyID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		insight, err := svc.Generate(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, insightResponse{Insight: toInsightDTO(*insight)})
	}
}

// WarrantyInsightList returns stored insights for a warranty, newest first.
func WarrantyInsightList(svc insightService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := warrantyID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.List(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := make([]insightDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, toInsightDTO(row))
		}
		responses.WriteSuccess(w, insightListResponse{Count: len(out), Insights: out})
	}
}
