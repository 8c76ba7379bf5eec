package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, warranties.Service, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	repo := NewMemoryRepository()
	ws, err := warranties.NewService(warranties.NewMemoryRepository(),
		warranties.WithClock(c.Now),
		warranties.WithDeleteHook(repo.DeleteForWarranty),
	)
	require.NoError(t, err)
	svc, err := NewService(repo, ws, nil)
	require.NoError(t, err)
	svc.now = c.Now
	return svc, ws, c
}

func createEnding(t *testing.T, ws warranties.Service, name string, end types.Date) int64 {
	t.Helper()
	rec, err := ws.Create(context.Background(), warranties.CreateInput{
		ProductName:  name,
		PurchaseDate: "2022-01-01",
		WarrantyEnd:  end.String(),
	})
	require.NoError(t, err)
	return rec.ID
}

func TestGenerateCreatesOneAlertPerLeadTime(t *testing.T) {
	svc, ws, _ := newTestService(t)
	ctx := context.Background()
	today := ws.Today()

	monthID := createEnding(t, ws, "Compressor", today.AddDays(30))
	weekID := createEnding(t, ws, "Boiler", today.AddDays(7))
	dayID := createEnding(t, ws, "Router", today.AddDays(1))
	createEnding(t, ws, "Chiller", today.AddDays(5))

	created, err := svc.Generate(ctx)
	require.NoError(t, err)
	require.Len(t, created, 3)

	got := map[int64]enums.AlertType{}
	for _, a := range created {
		got[a.WarrantyID] = a.AlertType
		assert.Equal(t, today.AddDays(a.AlertType.LeadDays()).String(), a.AlertDate.String())
		assert.False(t, a.Sent)
	}
	assert.Equal(t, map[int64]enums.AlertType{
		monthID: enums.AlertType30Day,
		weekID:  enums.AlertType7Day,
		dayID:   enums.AlertType1Day,
	}, got)

	again, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestListUnsentOnlyShowsDueAlerts(t *testing.T) {
	svc, ws, c := newTestService(t)
	ctx := context.Background()
	today := ws.Today()

	createEnding(t, ws, "Router", today.AddDays(1))
	createEnding(t, ws, "Boiler", today.AddDays(7))
	_, err := svc.Generate(ctx)
	require.NoError(t, err)

	due, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, due)

	c.now = c.now.AddDate(0, 0, 1)
	due, err = svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "Router", due[0].ProductName)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Boiler", all[0].ProductName)

	sent, err := svc.MarkSent(ctx, due[0].ID)
	require.NoError(t, err)
	assert.True(t, sent.Sent)
	require.NotNil(t, sent.SentAt)
	assert.True(t, sent.SentAt.Equal(c.now))

	due, err = svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDeleteAndNotFound(t *testing.T) {
	svc, ws, _ := newTestService(t)
	ctx := context.Background()

	id := createEnding(t, ws, "Router", ws.Today().AddDays(1))
	created, err := svc.Generate(ctx)
	require.NoError(t, err)
	require.Len(t, created, 1)

	forWarranty, err := svc.ListForWarranty(ctx, id)
	require.NoError(t, err)
	assert.Len(t, forWarranty, 1)

	require.NoError(t, svc.Delete(ctx, created[0].ID))
	err = svc.Delete(ctx, created[0].ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.MarkSent(ctx, 999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestWarrantyDeleteDropsAlerts(t *testing.T) {
	svc, ws, _ := newTestService(t)
	ctx := context.Background()

	id := createEnding(t, ws, "Router", ws.Today().AddDays(1))
	_, err := svc.Generate(ctx)
	require.NoError(t, err)

	_, err = ws.Delete(ctx, id)
	require.NoError(t, err)

	rows, err := svc.ListForWarranty(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
