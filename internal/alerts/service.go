package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

type warrantySource interface {
	EndingOn(ctx context.Context, end types.Date) ([]models.Warranty, error)
	Snapshot(ctx context.Context) ([]models.Warranty, types.Date, error)
	Today() types.Date
}

// Entry is an alert joined with the warranty it warns about.
type Entry struct {
	models.Alert
	ProductName string
	Category    *string
	WarrantyEnd types.Date
}

type Service struct {
	repo       Repository
	warranties warrantySource
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(repo Repository, source warrantySource, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("alert repository required")
	}
	if source == nil {
		return nil, errors.New("warranty source required")
	}
	return &Service{repo: repo, warranties: source, logg: logg, now: time.Now}, nil
}

// Generate creates the missing 30, 7 and 1 day warnings for warranties that
// end exactly that many days after today. Lead times that fail are reported
// together and do not stop the others.
func (s *Service) Generate(ctx context.Context) ([]models.Alert, error) {
	return s.GenerateFor(ctx, s.warranties.Today())
}

// GenerateFor runs generation as if today were the given date.
func (s *Service) GenerateFor(ctx context.Context, today types.Date) ([]models.Alert, error) {
	created := []models.Alert{}
	var errs error

	for _, alertType := range enums.AlertTypes() {
		alertDate := today.AddDays(alertType.LeadDays())
		ending, err := s.warranties.EndingOn(ctx, alertDate)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", alertType, err))
			continue
		}
		for _, w := range ending {
			a := models.Alert{WarrantyID: w.ID, AlertType: alertType, AlertDate: alertDate}
			ok, err := s.repo.Create(ctx, &a)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s for warranty %d: %w", alertType, w.ID, err))
				continue
			}
			if ok {
				created = append(created, a)
			}
		}
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"today":   today.String(),
			"created": len(created),
		}), "alerts generated")
	}
	if errs != nil {
		return created, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "generate alerts")
	}
	return created, nil
}

// List returns every alert, or only unsent alerts due by today, with their
// warranty's name and end date. Alerts of deleted warranties are skipped.
func (s *Service) List(ctx context.Context, unsentOnly bool) ([]Entry, error) {
	ws, today, err := s.warranties.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var q ListQuery
	if unsentOnly {
		q.DueBy = &today
	}
	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.FromDatabase(err, "list alerts")
	}

	byID := make(map[int64]models.Warranty, len(ws))
	for _, w := range ws {
		byID[w.ID] = w
	}
	out := make([]Entry, 0, len(rows))
	for _, a := range rows {
		w, ok := byID[a.WarrantyID]
		if !ok {
			continue
		}
		out = append(out, Entry{Alert: a, ProductName: w.ProductName, Category: w.Category, WarrantyEnd: w.WarrantyEnd})
	}
	return out, nil
}

func (s *Service) ListForWarranty(ctx context.Context, warrantyID int64) ([]models.Alert, error) {
	rows, err := s.repo.List(ctx, ListQuery{WarrantyID: warrantyID})
	if err != nil {
		return nil, pkgerrors.FromDatabase(err, "list warranty alerts")
	}
	return rows, nil
}

func (s *Service) MarkSent(ctx context.Context, id int64) (*models.Alert, error) {
	a, err := s.repo.MarkSent(ctx, id, s.now().UTC())
	if err != nil {
		return nil, mapError(err, "mark alert sent")
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err, "delete alert")
	}
	return nil
}

// DeleteForWarranty drops a warranty's alerts. It matches the warranty delete
// hook signature.
func (s *Service) DeleteForWarranty(ctx context.Context, warrantyID int64) error {
	return s.repo.DeleteForWarranty(ctx, warrantyID)
}

func mapError(err error, message string) error {
	if errors.Is(err, ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
	}
	return pkgerrors.FromDatabase(err, message)
}
