package bootstrap

import (
	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/internal/cron"
	"github.com/angelmondragon/warrantywizard-backend/pkg/config"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

// MaintenanceJobs builds the cron registry shared by the worker and the
// in-process scheduler of a memory-backed API. Chat history cleanup is
// registered only when a retention window is configured.
func MaintenanceJobs(cfg *config.Config, logg *logger.Logger, alertSvc *alerts.Service, history History) (*cron.Registry, error) {
	alertJob, err := cron.NewAlertJob(cron.AlertJobParams{
		Logger:   logg,
		Alerts:   alertSvc,
		Notifier: cron.LogNotifier{Logger: logg},
	})
	if err != nil {
		return nil, err
	}
	registry := cron.NewRegistry(alertJob)

	if cfg.Chat.RetentionDays > 0 {
		historyJob, err := cron.NewHistoryCleanupJob(cron.HistoryCleanupJobParams{
			Logger:     logg,
			Repository: history,
			Retention:  cfg.Chat.RetentionDays,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(historyJob)
	}
	return registry, nil
}
