package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

// Notifier delivers a due alert.
type Notifier interface {
	Notify(ctx context.Context, alert alerts.Entry) error
}

type alertService interface {
	Generate(ctx context.Context) ([]models.Alert, error)
	List(ctx context.Context, unsentOnly bool) ([]alerts.Entry, error)
	MarkSent(ctx context.Context, id int64) (*models.Alert, error)
}

type AlertJobParams struct {
	Logger   *logger.Logger
	Alerts   alertService
	Notifier Notifier
}

// NewAlertJob creates missing expiry alerts and then delivers every unsent
// alert that is due, marking each one sent after delivery.
func NewAlertJob(params AlertJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Alerts == nil {
		return nil, fmt.Errorf("alert service required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: params.Logger}
	}
	return &alertJob{logg: params.Logger, alerts: params.Alerts, notifier: notifier}, nil
}

type alertJob struct {
	logg     *logger.Logger
	alerts   alertService
	notifier Notifier
}

func (j *alertJob) Name() string { return "warranty-alerts" }

func (j *alertJob) Run(ctx context.Context) error {
	var errs error

	created, err := j.alerts.Generate(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	due, err := j.alerts.List(ctx, true)
	if err != nil {
		return multierr.Append(errs, err)
	}

	delivered := 0
	for _, a := range due {
		if err := j.notifier.Notify(ctx, a); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("notify alert %d: %w", a.ID, err))
			continue
		}
		if _, err := j.alerts.MarkSent(ctx, a.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark alert %d sent: %w", a.ID, err))
			continue
		}
		delivered++
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"alerts_created":   len(created),
		"alerts_due":       len(due),
		"alerts_delivered": delivered,
	}), "warranty alerts processed")
	return errs
}

// LogNotifier writes due alerts to the structured log.
type LogNotifier struct {
	Logger *logger.Logger
}

func (n LogNotifier) Notify(ctx context.Context, a alerts.Entry) error {
	n.Logger.Warn(n.Logger.WithFields(n.Logger.WithWarrantyID(ctx, a.WarrantyID), map[string]any{
		"alert_id":     a.ID,
		"alert_type":   a.AlertType.String(),
		"product_name": a.ProductName,
		"warranty_end": a.WarrantyEnd.String(),
	}), "warranty alert due")
	return nil
}
