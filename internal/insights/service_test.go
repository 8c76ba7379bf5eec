package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/llm"
	"github.com/angelmondragon/warrantywizard-backend/pkg/migrate/migratetest"
)

type stubCompleter struct {
	reply string
	err   error
	last  llm.Request
}

func (s *stubCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.last = req
	return s.reply, s.err
}

func newWarranties(t *testing.T) warranties.Service {
	t.Helper()
	ws, err := warranties.NewService(warranties.NewMemoryRepository(), warranties.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return ws
}

func createWarranty(t *testing.T, ws warranties.Service, end string) int64 {
	t.Helper()
	rec, err := ws.Create(context.Background(), warranties.CreateInput{
		ProductName:  "Air Compressor",
		PurchaseDate: "2023-01-01",
		WarrantyEnd:  end,
	})
	require.NoError(t, err)
	return rec.ID
}

func TestGenerateWithoutCompleterUsesRules(t *testing.T) {
	ws := newWarranties(t)
	svc, err := NewService(NewMemoryRepository(), ws, nil, nil)
	require.NoError(t, err)
	id := createWarranty(t, ws, "2024-01-21")

	insight, err := svc.Generate(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, 80, insight.RiskScore)
	assert.Equal(t, InsightTypeRisk, insight.InsightType)
	assert.Equal(t, rulesConfidence, insight.ConfidenceScore)
	assert.Contains(t, insight.Message, "20 days")
	require.NotNil(t, insight.Recommendation)

	rows, err := svc.List(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGenerateUsesCompletion(t *testing.T) {
	ws := newWarranties(t)
	completer := &stubCompleter{reply: `Here you go: {"risk_score": 35, "insight": "Low risk.", "recommendation": "Keep monitoring."}`}
	svc, err := NewService(NewMemoryRepository(), ws, completer, nil)
	require.NoError(t, err)
	id := createWarranty(t, ws, "2025-06-01")

	insight, err := svc.Generate(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, 35, insight.RiskScore)
	assert.Equal(t, "Low risk.", insight.Message)
	assert.Equal(t, llmConfidence, insight.ConfidenceScore)
	assert.Equal(t, systemPrompt, completer.last.System)
	assert.Equal(t, 300, completer.last.MaxTokens)
	require.Len(t, completer.last.Messages, 1)
	assert.Contains(t, completer.last.Messages[0].Content, "Warranty End: 2025-06-01")
}

func TestGenerateFallsBackOnProviderFailure(t *testing.T) {
	ws := newWarranties(t)
	for _, completer := range []*stubCompleter{
		{err: errors.New("timeout")},
		{reply: "I cannot help with that."},
	} {
		svc, err := NewService(NewMemoryRepository(), ws, completer, nil)
		require.NoError(t, err)
		id := createWarranty(t, ws, "2023-12-01")

		insight, err := svc.Generate(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 100, insight.RiskScore)
		assert.Equal(t, rulesConfidence, insight.ConfidenceScore)
	}
}

func TestGenerateUnknownWarranty(t *testing.T) {
	svc, err := NewService(NewMemoryRepository(), newWarranties(t), nil, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), 42)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGormRepositoryPersistsInsights(t *testing.T) {
	db := migratetest.SQLite(t)
	ws, err := warranties.NewService(warranties.NewGormRepository(db))
	require.NoError(t, err)
	repo := NewGormRepository(db)
	svc, err := NewService(repo, ws, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()
	id := createWarranty(t, ws, "2099-01-01")

	first, err := svc.Generate(ctx, id)
	require.NoError(t, err)
	second, err := svc.Generate(ctx, id)
	require.NoError(t, err)

	rows, err := repo.ListForWarranty(ctx, id)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
	assert.Equal(t, 20, rows[0].RiskScore)

	require.NoError(t, repo.DeleteForWarranty(ctx, id))
	rows, err = repo.ListForWarranty(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
