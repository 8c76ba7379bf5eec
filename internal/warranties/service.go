package warranties

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// Analytics bundles the dashboard summary with its breakdown.
type Analytics struct {
	Summary
	Breakdown Breakdown
}

// Service exposes warranty CRUD, claims, status queries and analytics. Every
// status is computed against the service clock's current UTC date.
type Service interface {
	List(ctx context.Context, filter Filter) ([]Record, error)
	Get(ctx context.Context, id int64) (*Record, error)
	Create(ctx context.Context, input CreateInput) (*Record, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*Record, error)
	Delete(ctx context.Context, id int64) (*Record, error)
	FileClaim(ctx context.Context, id int64, input ClaimInput) (*Record, error)
	Expiring(ctx context.Context, days int) ([]Record, error)
	Expired(ctx context.Context) ([]Record, error)
	Analytics(ctx context.Context) (*Analytics, error)
	Snapshot(ctx context.Context) ([]models.Warranty, types.Date, error)
	EndingOn(ctx context.Context, end types.Date) ([]models.Warranty, error)
	Today() types.Date
}

type service struct {
	repo     Repository
	logg     *logger.Logger
	now      func() time.Time
	onDelete []DeleteHook
}

// DeleteHook runs after a warranty row is removed.
type DeleteHook func(ctx context.Context, id int64) error

// Option customises the service.
type Option func(*service)

// WithClock overrides the clock used to derive statuses.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger for non-fatal data warnings.
func WithLogger(logg *logger.Logger) Option {
	return func(s *service) {
		s.logg = logg
	}
}

// WithDeleteHook registers cleanup for rows that reference a warranty.
// Failures are logged and do not fail the delete.
func WithDeleteHook(hook DeleteHook) Option {
	return func(s *service) {
		if hook != nil {
			s.onDelete = append(s.onDelete, hook)
		}
	}
}

// NewService builds a warranty service backed by repo.
func NewService(repo Repository, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warranty repository required")
	}
	s := &service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Today() types.Date {
	return types.DateOf(s.now())
}

func (s *service) List(ctx context.Context, filter Filter) ([]Record, error) {
	rows, err := s.repo.List(ctx, ListQuery{Category: filter.Category, Supplier: filter.Supplier})
	if err != nil {
		return nil, pkgerrors.FromDatabase(err, "list warranties")
	}
	return filter.Apply(EvaluateAll(rows, s.Today(), DefaultExpiringThresholdDays)), nil
}

func (s *service) Get(ctx context.Context, id int64) (*Record, error) {
	w, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.evaluate(*w), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Record, error) {
	w, err := input.toModel()
	if err != nil {
		return nil, err
	}
	s.warnInconsistentDates(ctx, w)

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, pkgerrors.FromDatabase(err, "create warranty")
	}
	return s.evaluate(*w), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*Record, error) {
	w, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.apply(w); err != nil {
		return nil, err
	}
	s.warnInconsistentDates(ctx, w)

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, s.mapWriteError(err, "update warranty")
	}
	return s.evaluate(*w), nil
}

func (s *service) Delete(ctx context.Context, id int64) (*Record, error) {
	w, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, s.mapWriteError(err, "delete warranty")
	}
	for _, hook := range s.onDelete {
		if err := hook(ctx, id); err != nil && s.logg != nil {
			s.logg.Error(s.logg.WithWarrantyID(ctx, id), "warranty delete cleanup failed", err)
		}
	}
	return s.evaluate(*w), nil
}

func (s *service) FileClaim(ctx context.Context, id int64, input ClaimInput) (*Record, error) {
	description := strings.TrimSpace(input.ClaimDescription)
	if description == "" {
		return nil, pkgerrors.Field("claim_description", "claim_description is required")
	}
	amount, err := money("claim_amount", &input.ClaimAmount)
	if err != nil {
		return nil, err
	}
	claimDate, err := optionalDate("claim_date", input.ClaimDate)
	if err != nil {
		return nil, err
	}
	if claimDate == nil {
		today := s.Today()
		claimDate = &today
	}

	w, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	w.ClaimFiled = true
	w.ClaimAmount = amount
	w.ClaimDescription = &description
	w.ClaimDate = claimDate

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, s.mapWriteError(err, "file claim")
	}
	return s.evaluate(*w), nil
}

func (s *service) Expiring(ctx context.Context, days int) ([]Record, error) {
	rows, err := s.repo.List(ctx, ListQuery{})
	if err != nil {
		return nil, pkgerrors.FromDatabase(err, "list warranties")
	}
	return Expiring(rows, s.Today(), days), nil
}

func (s *service) Expired(ctx context.Context) ([]Record, error) {
	rows, err := s.repo.List(ctx, ListQuery{})
	if err != nil {
		return nil, pkgerrors.FromDatabase(err, "list warranties")
	}
	return Expired(rows, s.Today()), nil
}

func (s *service) Analytics(ctx context.Context) (*Analytics, error) {
	rows, today, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Analytics{
		Summary:   Summarize(rows, today),
		Breakdown: BuildBreakdown(rows, today),
	}, nil
}

// Snapshot returns every warranty together with the day used to evaluate it.
func (s *service) Snapshot(ctx context.Context) ([]models.Warranty, types.Date, error) {
	rows, err := s.repo.List(ctx, ListQuery{})
	if err != nil {
		return nil, types.Date{}, pkgerrors.FromDatabase(err, "list warranties")
	}
	return rows, s.Today(), nil
}

func (s *service) EndingOn(ctx context.Context, end types.Date) ([]models.Warranty, error) {
	rows, err := s.repo.FindByEndDate(ctx, end)
	if err != nil {
		return nil, pkgerrors.FromDatabase(err, "find warranties by end date")
	}
	return rows, nil
}

func (s *service) find(ctx context.Context, id int64) (*models.Warranty, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warranty not found")
		}
		return nil, pkgerrors.FromDatabase(err, "lookup warranty")
	}
	return w, nil
}

func (s *service) mapWriteError(err error, message string) error {
	if errors.Is(err, ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "warranty not found")
	}
	return pkgerrors.FromDatabase(err, message)
}

func (s *service) evaluate(w models.Warranty) *Record {
	r := Evaluate(w, s.Today(), DefaultExpiringThresholdDays)
	return &r
}

// purchase_date after warranty_end is accepted as entered.
func (s *service) warnInconsistentDates(ctx context.Context, w *models.Warranty) {
	if s.logg == nil || !w.PurchaseDate.After(w.WarrantyEnd) {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"product_name":  w.ProductName,
		"purchase_date": w.PurchaseDate.String(),
		"warranty_end":  w.WarrantyEnd.String(),
	})
	s.logg.Warn(ctx, "warranty ends before purchase date")
}

// StatusFilter parses an optional status query value.
func StatusFilter(raw string) (enums.WarrantyStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	status, err := enums.ParseWarrantyStatus(raw)
	if err != nil {
		return "", pkgerrors.Field("status", "status must be one of active, expiring_soon, expired")
	}
	return status, nil
}
