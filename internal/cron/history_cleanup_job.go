package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

const chatHistoryRetentionDays = 30

type HistoryCleanupJobParams struct {
	Logger     *logger.Logger
	Repository historyPruner
	Retention  int
}

type historyPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewHistoryCleanupJob prunes chat turns older than the retention window.
func NewHistoryCleanupJob(params HistoryCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("chat history repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = chatHistoryRetentionDays
	}
	return &historyCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type historyCleanupJob struct {
	logg      *logger.Logger
	repo      historyPruner
	retention int
	now       func() time.Time
}

func (j *historyCleanupJob) Name() string { return "chat-history-cleanup" }

func (j *historyCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("chat history cleanup: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	}), "chat history cleanup complete")
	return nil
}
