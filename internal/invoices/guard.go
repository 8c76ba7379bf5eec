package invoices

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
)

// MIME types accepted for invoice uploads.
const (
	MimePDF  = "application/pdf"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeGIF  = "image/gif"
	MimeWEBP = "image/webp"
	MimeCSV  = "text/csv"
)

var invoiceTypes = []string{MimePDF, MimePNG, MimeJPEG, MimeGIF, MimeWEBP}

// DetectInvoiceType sniffs data and rejects anything but a PDF or image.
func DetectInvoiceType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeUpload, "uploaded file is empty")
	}
	detected := mimetype.Detect(data)
	for _, allowed := range invoiceTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", unsupported(detected.String(), "only PDF and image invoices are supported")
}

// DetectCSV accepts CSV or plain-text content.
func DetectCSV(data []byte) error {
	if len(data) == 0 {
		return pkgerrors.New(pkgerrors.CodeUpload, "uploaded file is empty")
	}
	detected := mimetype.Detect(data)
	if detected.Is(MimeCSV) || detected.Is("text/plain") {
		return nil
	}
	return unsupported(detected.String(), "only CSV files are supported")
}

func unsupported(detected, message string) error {
	contentType, _, _ := strings.Cut(detected, ";")
	return pkgerrors.New(pkgerrors.CodeUpload, message).WithDetails(map[string]any{
		"content_type": contentType,
	})
}
