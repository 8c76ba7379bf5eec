package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warrantywizard-backend/api/responses"
	"github.com/angelmondragon/warrantywizard-backend/api/validators"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

type createWarrantyPayload struct {
	ProductName          string           `json:"product_name" validate:"required"`
	Category             *string          `json:"category"`
	SerialNumber         *string          `json:"serial_number"`
	Supplier             *string          `json:"supplier"`
	Notes                *string          `json:"notes"`
	InvoiceURL           *string          `json:"invoice_url"`
	Location             *string          `json:"location"`
	Department           *string          `json:"department"`
	PurchaseDate         string           `json:"purchase_date" validate:"required"`
	WarrantyStart        string           `json:"warranty_start"`
	WarrantyEnd          string           `json:"warranty_end"`
	WarrantyLengthMonths *int             `json:"warranty_length_months" validate:"omitempty,min=0,max=1200"`
	PurchaseCost         *decimal.Decimal `json:"purchase_cost"`
	ClaimFiled           bool             `json:"claim_filed"`
	ClaimDate            string           `json:"claim_date"`
	ClaimAmount          *decimal.Decimal `json:"claim_amount"`
	ClaimDescription     *string          `json:"claim_description"`
}

func (p createWarrantyPayload) input() warranties.CreateInput {
	return warranties.CreateInput{
		ProductName:          p.ProductName,
		Category:             p.Category,
		SerialNumber:         p.SerialNumber,
		Supplier:             p.Supplier,
		Notes:                p.Notes,
		InvoiceURL:           p.InvoiceURL,
		Location:             p.Location,
		Department:           p.Department,
		PurchaseDate:         p.PurchaseDate,
		WarrantyStart:        p.WarrantyStart,
		WarrantyEnd:          p.WarrantyEnd,
		WarrantyLengthMonths: p.WarrantyLengthMonths,
		PurchaseCost:         p.PurchaseCost,
		ClaimFiled:           p.ClaimFiled,
		ClaimDate:            p.ClaimDate,
		ClaimAmount:          p.ClaimAmount,
		ClaimDescription:     p.ClaimDescription,
	}
}

// updateWarrantyPayload has no status field; status is always derived.
type updateWarrantyPayload struct {
	ProductName          *string          `json:"product_name"`
	Category             *string          `json:"category"`
	SerialNumber         *string          `json:"serial_number"`
	Supplier             *string          `json:"supplier"`
	Notes                *string          `json:"notes"`
	InvoiceURL           *string          `json:"invoice_url"`
	Location             *string          `json:"location"`
	Department           *string          `json:"department"`
	PurchaseDate         *string          `json:"purchase_date"`
	WarrantyStart        *string          `json:"warranty_start"`
	WarrantyEnd          *string          `json:"warranty_end"`
	WarrantyLengthMonths *int             `json:"warranty_length_months" validate:"omitempty,min=0,max=1200"`
	PurchaseCost         *decimal.Decimal `json:"purchase_cost"`
	ClaimFiled           *bool            `json:"claim_filed"`
	ClaimDate            *string          `json:"claim_date"`
	ClaimAmount          *decimal.Decimal `json:"claim_amount"`
	ClaimDescription     *string          `json:"claim_description"`
}

func (p updateWarrantyPayload) input() warranties.UpdateInput {
	return warranties.UpdateInput{
		ProductName:          p.ProductName,
		Category:             p.Category,
		SerialNumber:         p.SerialNumber,
		Supplier:             p.Supplier,
		Notes:                p.Notes,
		InvoiceURL:           p.InvoiceURL,
		Location:             p.Location,
		Department:           p.Department,
		PurchaseDate:         p.PurchaseDate,
		WarrantyStart:        p.WarrantyStart,
		WarrantyEnd:          p.WarrantyEnd,
		WarrantyLengthMonths: p.WarrantyLengthMonths,
		PurchaseCost:         p.PurchaseCost,
		ClaimFiled:           p.ClaimFiled,
		ClaimDate:            p.ClaimDate,
		ClaimAmount:          p.ClaimAmount,
		ClaimDescription:     p.ClaimDescription,
	}
}

type claimPayload struct {
	ClaimAmount      *decimal.Decimal `json:"claim_amount" validate:"required"`
	ClaimDescription string           `json:"claim_description"`
	ClaimDate        string           `json:"claim_date"`
}

type warrantyListResponse struct {
	Count      int           `json:"count"`
	Warranties []warrantyDTO `json:"warranties"`
}

type expiringResponse struct {
	Count      int           `json:"count"`
	Days       int           `json:"days"`
	Warranties []warrantyDTO `json:"warranties"`
}

type warrantyResponse struct {
	Warranty warrantyDTO `json:"warranty"`
}

// WarrantiesList returns warranties filtered by status, free-text query,
// category and supplier.
func WarrantiesList(svc warranties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		status, err := warranties.StatusFilter(query.Get("status"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		records, err := svc.List(ctx, warranties.Filter{
			Status:   status,
			Query:    query.Get("q"),
			Category: query.Get("category"),
			Supplier: query.Get("supplier"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, warrantyListResponse{Count: len(records), Warranties: toWarrantyDTOs(records)})
	}
}

// WarrantiesExpiring returns warranties ending within ?days= (default 30),
// soonest first. Unusable values fall back to the default.
func WarrantiesExpiring(svc warranties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		days := validators.QueryPositiveInt(r, "days", warranties.DefaultExpiringThresholdDays)

		records, err := svc.Expiring(ctx, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, expiringResponse{Count: len(records), Days: days, Warranties: toWarrantyDTOs(records)})
	}
}

func WarrantiesExpired(svc warranties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		records, err := svc.Expired(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, warrantyListResponse{Count: len(records), Warranties: toWarrantyDTOs(records)})
	}
}

func WarrantyGet(svc warranties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := warrantyID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rec, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, warrantyResponse{Warranty: toWarrantyDTO(*rec)})
	}
}

func WarrantyCreate(svc warranties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createWarrantyPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rec, err := svc.Create(ctx, payload.input())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithWarrantyID(ctx, rec.ID), "warranty.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, warrantyResponse{Warranty: toWarrantyDTO(*rec)})
	}
}

// WarrantyUpdate applies a field-level patch. It serves both PUT and PATCH.
func WarrantyUpdate(svc warranties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := warrantyID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateWarrantyPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rec, err := svc.Update(ctx, id, payload.input())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, warrantyResponse{Warranty: toWarrantyDTO(*rec)})
	}
}

func WarrantyDelete(svc warranties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := warrantyID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rec, err := svc.Delete(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithWarrantyID(ctx, id), "warranty.deleted")
		}
		responses.WriteSuccess(w, warrantyResponse{Warranty: toWarrantyDTO(*rec)})
	}
}

// WarrantyClaim marks a warranty as claimed.
func WarrantyClaim(svc warranties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := warrantyID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload claimPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rec, err := svc.FileClaim(ctx, id, warranties.ClaimInput{
			ClaimAmount:      *payload.ClaimAmount,
			ClaimDescription: payload.ClaimDescription,
			ClaimDate:        payload.ClaimDate,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithWarrantyID(ctx, id), "warranty.claim_filed")
		}
		responses.WriteSuccess(w, warrantyResponse{Warranty: toWarrantyDTO(*rec)})
	}
}

func warrantyID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, pkgerrors.Field("id", "id is required")
	}
	return validators.ParsePathID(raw, "id")
}
