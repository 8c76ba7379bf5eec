package cron

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/multierr"

	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
)

type fakeAlerts struct {
	created   []models.Alert
	genErr    error
	due       []alerts.Entry
	markedIDs []int64
}

func (f *fakeAlerts) Generate(context.Context) ([]models.Alert, error) {
	return f.created, f.genErr
}

func (f *fakeAlerts) List(_ context.Context, unsentOnly bool) ([]alerts.Entry, error) {
	if !unsentOnly {
		return nil, errors.New("job must only list unsent alerts")
	}
	return f.due, nil
}

func (f *fakeAlerts) MarkSent(_ context.Context, id int64) (*models.Alert, error) {
	f.markedIDs = append(f.markedIDs, id)
	return &models.Alert{ID: id, Sent: true}, nil
}

type failingNotifier struct{ failID int64 }

func (n failingNotifier) Notify(_ context.Context, a alerts.Entry) error {
	if a.ID == n.failID {
		return errors.New("smtp down")
	}
	return nil
}

func entry(id int64) alerts.Entry {
	return alerts.Entry{Alert: models.Alert{ID: id, WarrantyID: id * 10}, ProductName: "Boiler"}
}

func TestAlertJobDeliversDueAlerts(t *testing.T) {
	svc := &fakeAlerts{created: []models.Alert{{ID: 1}}, due: []alerts.Entry{entry(1), entry(2)}}
	job, err := NewAlertJob(AlertJobParams{Logger: testLogger(), Alerts: svc})
	if err != nil {
		t.Fatalf("NewAlertJob: %v", err)
	}
	if job.Name() != "warranty-alerts" {
		t.Fatalf("unexpected job name %q", job.Name())
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(svc.markedIDs) != 2 {
		t.Fatalf("expected 2 alerts marked sent, got %v", svc.markedIDs)
	}
}

func TestAlertJobCombinesFailures(t *testing.T) {
	svc := &fakeAlerts{genErr: errors.New("db down"), due: []alerts.Entry{entry(1), entry(2)}}
	job, err := NewAlertJob(AlertJobParams{
		Logger:   testLogger(),
		Alerts:   svc,
		Notifier: failingNotifier{failID: 1},
	})
	if err != nil {
		t.Fatalf("NewAlertJob: %v", err)
	}

	err = job.Run(context.Background())
	if err == nil {
		t.Fatal("expected combined error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 combined errors, got %d: %v", got, err)
	}
	if len(svc.markedIDs) != 1 || svc.markedIDs[0] != 2 {
		t.Fatalf("expected only alert 2 marked sent, got %v", svc.markedIDs)
	}
}

func TestNewAlertJobValidates(t *testing.T) {
	if _, err := NewAlertJob(AlertJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected missing alert service to fail")
	}
}
