package invoices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
)

type fakeStore struct {
	saved   []string
	deleted []string
	err     error
}

func (f *fakeStore) Save(_ context.Context, originalName string, _ []byte) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	name := "stored-" + originalName
	f.saved = append(f.saved, name)
	return name, "/uploads/" + name, nil
}

func (f *fakeStore) Delete(name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *warranties.MemoryRepository) {
	t.Helper()
	repo := warranties.NewMemoryRepository()
	ws, err := warranties.NewService(repo, warranties.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	store := &fakeStore{}
	svc, err := NewService(ws, store, nil)
	require.NoError(t, err)
	return svc, store, repo
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, &fakeStore{}, nil); err == nil {
		t.Fatal("expected error without warranty service")
	}
}

func TestPreviewImageHasNoFields(t *testing.T) {
	svc, store, _ := newTestService(t)

	res, err := svc.Preview(context.Background(), Upload{Filename: "scan.png", Data: pngHeader})
	require.NoError(t, err)

	assert.Equal(t, MimePNG, res.ContentType)
	assert.Empty(t, res.ExtractedText)
	assert.True(t, res.Fields.Empty())
	assert.Empty(t, store.saved)
}

func TestPreviewRejectsUnsupportedType(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Preview(context.Background(), Upload{Filename: "notes.txt", Data: []byte("hello")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpload))
}

func TestCreateFromInvoiceComputesEnd(t *testing.T) {
	svc, store, repo := newTestService(t)

	rec, err := svc.CreateFromInvoice(context.Background(), Upload{Filename: "invoice.png", Data: pngHeader}, map[string]string{
		"product_name":           "Bosch Drill",
		"purchase_date":          "2024-01-31",
		"warranty_length_months": "12",
		"supplier":               "  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-01-31", rec.WarrantyEnd.String())
	require.NotNil(t, rec.InvoiceURL)
	assert.Equal(t, "/uploads/stored-invoice.png", *rec.InvoiceURL)
	assert.Nil(t, rec.Supplier)
	assert.Equal(t, []string{"stored-invoice.png"}, store.saved)

	rows, err := repo.List(context.Background(), warranties.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCreateFromInvoiceEndFollowsPurchaseDateNotStart(t *testing.T) {
	svc, _, _ := newTestService(t)

	rec, err := svc.CreateFromInvoice(context.Background(), Upload{Filename: "invoice.png", Data: pngHeader}, map[string]string{
		"product_name":           "Makita Saw",
		"purchase_date":          "2024-03-15",
		"warranty_start":         "2024-04-01",
		"warranty_length_months": "24",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-04-01", rec.WarrantyStart.String())
	assert.Equal(t, "2026-03-15", rec.WarrantyEnd.String())
}

func TestCreateFromInvoiceRequiresExtractedFields(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.CreateFromInvoice(context.Background(), Upload{Filename: "invoice.png", Data: pngHeader}, map[string]string{
		"product_name": "Bosch Drill",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]any{"field": "purchase_date"}, pkgerrors.As(err).Details())
	assert.Empty(t, store.saved)
}

func TestCreateFromInvoiceRemovesFileWhenCreateFails(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.CreateFromInvoice(context.Background(), Upload{Filename: "invoice.png", Data: pngHeader}, map[string]string{
		"product_name":           "Bosch Drill",
		"purchase_date":          "yesterday",
		"warranty_length_months": "12",
	})
	require.Error(t, err)
	assert.Equal(t, []string{"stored-invoice.png"}, store.deleted)
}

func TestCreateFromInvoiceStoreFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.err = errors.New("disk full")

	_, err := svc.CreateFromInvoice(context.Background(), Upload{Filename: "invoice.png", Data: pngHeader}, map[string]string{
		"product_name":           "Bosch Drill",
		"purchase_date":          "2024-01-31",
		"warranty_length_months": "12",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}

func TestImportCSV(t *testing.T) {
	svc, _, repo := newTestService(t)
	data := []byte("Product Name,Purchase Date,Warranty End,Category,Cost\n" +
		"Laptop,2023-01-15,2026-01-15,IT,\"1,200.00\"\n" +
		",2023-02-01,2025-02-01,IT,10\n" +
		"\n" +
		"Printer,02/01/2023,02/01/2025,Office,350\n")

	res, err := svc.ImportCSV(context.Background(), Upload{Filename: "bulk.csv", Data: data})
	require.NoError(t, err)

	require.Len(t, res.Created, 2)
	assert.Equal(t, "Laptop", res.Created[0].ProductName)
	assert.Equal(t, "1200", res.Created[0].PurchaseCost.Decimal.String())
	assert.Equal(t, "2025-02-01", res.Created[1].WarrantyEnd.String())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Message, "product_name")

	rows, err := repo.List(context.Background(), warranties.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestImportCSVRejectsBinary(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ImportCSV(context.Background(), Upload{Filename: "x.csv", Data: pngHeader})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpload))

	_, err = svc.ImportCSV(context.Background(), Upload{Filename: "x.csv"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpload))
}

func TestExtractFromText(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ExtractFromText("   ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	f, err := svc.ExtractFromText(sampleInvoice)
	require.NoError(t, err)
	require.NotNil(t, f.ProductName)
	assert.Equal(t, "Hydraulic Press HP-200", *f.ProductName)
}
