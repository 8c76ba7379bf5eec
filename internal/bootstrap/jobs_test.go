package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/config"
)

func memoryAlertService(t *testing.T, stores *Stores) *alerts.Service {
	t.Helper()
	warrantySvc, err := warranties.NewService(stores.Warranties)
	require.NoError(t, err)
	alertSvc, err := alerts.NewService(stores.Alerts, warrantySvc, testLogger())
	require.NoError(t, err)
	return alertSvc
}

func TestMaintenanceJobsIncludesHistoryCleanupForMemoryStore(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.StoreDriverMemory},
		Chat:  config.ChatConfig{RetentionDays: 30},
	}
	stores, err := OpenStores(context.Background(), cfg, testLogger())
	require.NoError(t, err)

	registry, err := MaintenanceJobs(cfg, testLogger(), memoryAlertService(t, stores), stores.History)
	require.NoError(t, err)

	assert.Equal(t, []string{"warranty-alerts", "chat-history-cleanup"}, registry.Names())
}

func TestMaintenanceJobsSkipsHistoryCleanupWithoutRetention(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}}
	stores, err := OpenStores(context.Background(), cfg, testLogger())
	require.NoError(t, err)

	registry, err := MaintenanceJobs(cfg, testLogger(), memoryAlertService(t, stores), stores.History)
	require.NoError(t, err)

	assert.Equal(t, []string{"warranty-alerts"}, registry.Names())
}
