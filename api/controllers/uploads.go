package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/angelmondragon/warrantywizard-backend/api/responses"
	"github.com/angelmondragon/warrantywizard-backend/api/validators"
	"github.com/angelmondragon/warrantywizard-backend/internal/invoices"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

const (
	invoiceField = "invoice"
	csvField     = "file"
	// parts beyond this spill to temp files
	multipartMemory = 1 << 20
)

type invoiceService interface {
	Preview(ctx context.Context, up invoices.Upload) (*invoices.PreviewResult, error)
	CreateFromInvoice(ctx context.Context, up invoices.Upload, overrides map[string]string) (*warranties.Record, error)
	ImportCSV(ctx context.Context, up invoices.Upload) (*invoices.ImportResult, error)
	ExtractFromText(text string) (invoices.Fields, error)
}

type invoicePreviewResponse struct {
	Filename      string    `json:"filename"`
	ContentType   string    `json:"content_type"`
	ExtractedText string    `json:"extracted_text"`
	Fields        fieldsDTO `json:"fields"`
}

type csvImportResponse struct {
	Created    int                 `json:"created"`
	Warranties []warrantyDTO       `json:"warranties"`
	Errors     []invoices.RowError `json:"errors"`
}

type extractInvoicePayload struct {
	InvoiceText string `json:"invoice_text" validate:"required"`
}

type extractInvoiceResponse struct {
	Fields fieldsDTO `json:"fields"`
}

// UploadInvoicePreview extracts warranty fields from an invoice without
// saving anything.
func UploadInvoicePreview(svc invoiceService, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		up, _, err := readUpload(w, r, invoiceField, maxBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Preview(ctx, up)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoicePreviewResponse{
			Filename:      up.Filename,
			ContentType:   result.ContentType,
			ExtractedText: result.ExtractedText,
			Fields:        toFieldsDTO(result.Fields),
		})
	}
}

// UploadInvoiceCreate stores the invoice and creates a warranty from it.
// Other form fields override what extraction found.
func UploadInvoiceCreate(svc invoiceService, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		up, overrides, err := readUpload(w, r, invoiceField, maxBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rec, err := svc.CreateFromInvoice(ctx, up, overrides)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithWarrantyID(ctx, rec.ID), "warranty.created_from_invoice")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, warrantyResponse{Warranty: toWarrantyDTO(*rec)})
	}
}

// UploadCSV imports one warranty per CSV row.
func UploadCSV(svc invoiceService, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		up, _, err := readUpload(w, r, csvField, maxBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ImportCSV(ctx, up)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"created": len(result.Created),
				"failed":  len(result.Errors),
			}), "warranties.csv_imported")
		}
		responses.WriteSuccess(w, csvImportResponse{
			Created:    len(result.Created),
			Warranties: toWarrantyDTOs(result.Created),
			Errors:     result.Errors,
		})
	}
}

// ExtractInvoice parses warranty fields out of raw invoice text.
func ExtractInvoice(svc invoiceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload extractInvoicePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		fields, err := svc.ExtractFromText(payload.InvoiceText)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, extractInvoiceResponse{Fields: toFieldsDTO(fields)})
	}
}

// readUpload reads one file part and the plain form values. Temp files
// created while parsing are removed before it returns.
func readUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (invoices.Upload, map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return invoices.Upload{}, nil, pkgerrors.New(pkgerrors.CodeUpload, fmt.Sprintf("file exceeds the %dMB upload limit", maxBytes>>20)).
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return invoices.Upload{}, nil, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "expected a multipart/form-data upload")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		return invoices.Upload{}, nil, pkgerrors.New(pkgerrors.CodeUpload, "no file uploaded").WithDetails(map[string]any{"field": field})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return invoices.Upload{}, nil, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "read uploaded file")
	}

	values := make(map[string]string, len(r.MultipartForm.Value))
	for key, vals := range r.MultipartForm.Value {
		if len(vals) > 0 && strings.TrimSpace(vals[0]) != "" {
			values[key] = vals[0]
		}
	}
	return invoices.Upload{Filename: header.Filename, Data: data}, values, nil
}
