package invoices

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

// Upload is a received file held in memory.
type Upload struct {
	Filename string
	Data     []byte
}

// PreviewResult is what an invoice upload yields without persisting anything.
type PreviewResult struct {
	ContentType   string
	ExtractedText string
	Fields        Fields
}

// RowError reports a CSV row that could not be imported. Row is 1-based and
// counts the header line.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"error"`
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Created []warranties.Record
	Errors  []RowError
}

type warrantyCreator interface {
	Create(ctx context.Context, input warranties.CreateInput) (*warranties.Record, error)
}

// FileStore persists invoice files.
type FileStore interface {
	Save(ctx context.Context, originalName string, data []byte) (string, string, error)
	Delete(name string) error
}

type Service struct {
	warranties warrantyCreator
	files      FileStore
	logg       *logger.Logger
}

func NewService(creator warrantyCreator, files FileStore, logg *logger.Logger) (*Service, error) {
	if creator == nil {
		return nil, errors.New("warranty service is required")
	}
	if files == nil {
		return nil, errors.New("file store is required")
	}
	return &Service{warranties: creator, files: files, logg: logg}, nil
}

// Preview sniffs the upload, extracts its text and parses warranty fields.
func (s *Service) Preview(ctx context.Context, up Upload) (*PreviewResult, error) {
	contentType, text, err := s.read(ctx, up)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{
		ContentType:   contentType,
		ExtractedText: Preview(text),
		Fields:        ExtractFields(text),
	}, nil
}

// CreateFromInvoice extracts fields from the upload, lets non-empty overrides
// replace them, stores the file and persists the warranty. The warranty end is
// the purchase date plus the warranty length.
func (s *Service) CreateFromInvoice(ctx context.Context, up Upload, overrides map[string]string) (*warranties.Record, error) {
	_, text, err := s.read(ctx, up)
	if err != nil {
		return nil, err
	}

	in, err := inputFromValues(overrides)
	if err != nil {
		return nil, err
	}
	mergeFields(&in, ExtractFields(text))

	switch {
	case strings.TrimSpace(in.ProductName) == "":
		return nil, pkgerrors.Field("product_name", "product_name could not be extracted from the invoice")
	case strings.TrimSpace(in.PurchaseDate) == "":
		return nil, pkgerrors.Field("purchase_date", "purchase_date could not be extracted from the invoice")
	case in.WarrantyLengthMonths == nil && strings.TrimSpace(in.WarrantyEnd) == "":
		return nil, pkgerrors.Field("warranty_length_months", "warranty_length_months could not be extracted from the invoice")
	}
	if strings.TrimSpace(in.WarrantyEnd) == "" {
		// A warranty_start override never shifts the end of an invoice warranty.
		purchase, err := warranties.NormalizeDate(in.PurchaseDate)
		if err != nil {
			return nil, pkgerrors.Field("purchase_date", "purchase_date must be a valid date (YYYY-MM-DD, MM/DD/YYYY or DD/MM/YYYY)")
		}
		in.WarrantyEnd = purchase.AddMonths(*in.WarrantyLengthMonths).String()
	}

	name, url, err := s.files.Save(ctx, up.Filename, up.Data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store invoice")
	}
	in.InvoiceURL = &url

	rec, err := s.warranties.Create(ctx, in)
	if err != nil {
		if delErr := s.files.Delete(name); delErr != nil && s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "file", name), "invoice cleanup failed", delErr)
		}
		return nil, err
	}
	return rec, nil
}

// ImportCSV creates one warranty per data row. Row failures are collected and
// do not stop the import.
func (s *Service) ImportCSV(ctx context.Context, up Upload) (*ImportResult, error) {
	if len(up.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUpload, "csv file is empty")
	}
	if err := DetectCSV(up.Data); err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(up.Data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "csv header row is missing")
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = NormalizeColumn(h)
	}

	result := &ImportResult{Created: []warranties.Record{}, Errors: []RowError{}}
	row := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Message: err.Error()})
			continue
		}
		if blankRow(fields) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		values := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				values[col] = fields[i]
			}
		}
		in, err := inputFromValues(values)
		if err == nil {
			var rec *warranties.Record
			if rec, err = s.warranties.Create(ctx, in); err == nil {
				result.Created = append(result.Created, *rec)
				continue
			}
		}
		result.Errors = append(result.Errors, RowError{Row: row, Message: rowMessage(err)})
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"created": len(result.Created),
			"failed":  len(result.Errors),
		}), "csv import finished")
	}
	return result, nil
}

// ExtractFromText parses fields out of pasted invoice text.
func (s *Service) ExtractFromText(text string) (Fields, error) {
	if strings.TrimSpace(text) == "" {
		return Fields{}, pkgerrors.Field("invoice_text", "invoice_text is required")
	}
	return ExtractFields(text), nil
}

func (s *Service) read(ctx context.Context, up Upload) (string, string, error) {
	if len(up.Data) == 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeUpload, "invoice file is empty")
	}
	contentType, err := DetectInvoiceType(up.Data)
	if err != nil {
		return "", "", err
	}
	text, err := ExtractText(up.Data, contentType)
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"file":  up.Filename,
			"error": err.Error(),
		}), "invoice text extraction failed")
	}
	return contentType, text, nil
}

func mergeFields(in *warranties.CreateInput, f Fields) {
	if in.ProductName == "" && f.ProductName != nil {
		in.ProductName = *f.ProductName
	}
	if in.SerialNumber == nil {
		in.SerialNumber = f.SerialNumber
	}
	if in.Supplier == nil {
		in.Supplier = f.Supplier
	}
	if in.PurchaseDate == "" && f.PurchaseDate != nil {
		in.PurchaseDate = f.PurchaseDate.String()
	}
	if in.WarrantyLengthMonths == nil {
		in.WarrantyLengthMonths = f.WarrantyLengthMonths
	}
	if in.PurchaseCost == nil {
		in.PurchaseCost = f.PurchaseCost
	}
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func rowMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
