package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/warrantywizard-backend/api/responses"
	"github.com/angelmondragon/warrantywizard-backend/api/validators"
	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

type alertService interface {
	Generate(ctx context.Context) ([]models.Alert, error)
	List(ctx context.Context, unsentOnly bool) ([]alerts.Entry, error)
	ListForWarranty(ctx context.Context, warrantyID int64) ([]models.Alert, error)
	MarkSent(ctx context.Context, id int64) (*models.Alert, error)
	Delete(ctx context.Context, id int64) error
}

type alertListResponse struct {
	Count  int        `json:"count"`
	Alerts []alertDTO `json:"alerts"`
}

type alertResponse struct {
	Alert alertDTO `json:"alert"`
}

// AlertsList returns every alert, or with ?unsent=true the unsent alerts
// that are due today or earlier.
func AlertsList(svc alertService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		unsent, err := validators.ParseQueryBool(r, "unsent")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entries, err := svc.List(ctx, unsent)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, alertListResponse{Count: len(entries), Alerts: toEntryDTOs(entries)})
	}
}

// AlertsGenerate runs alert generation on demand.
func AlertsGenerate(svc alertService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		created, err := svc.Generate(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "created", len(created)), "alerts.generated")
		}
		responses.WriteSuccess(w, alertListResponse{Count: len(created), Alerts: toAlertDTOs(created)})
	}
}

func AlertMarkSent(svc alertService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParsePathID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		alert, err := svc.MarkSent(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, alertResponse{Alert: toAlertDTO(*alert)})
	}
}

func AlertDelete(svc alertService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParsePathID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true, "id": id})
	}
}

// WarrantyAlerts lists the alerts of one warranty.
func WarrantyAlerts(svc alertService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := warrantyID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListForWarranty(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, alertListResponse{Count: len(rows), Alerts: toAlertDTOs(rows)})
	}
}
