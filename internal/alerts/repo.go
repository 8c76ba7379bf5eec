package alerts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// ErrNotFound is returned when no alert has the id.
var ErrNotFound = errors.New("alert not found")

// ListQuery narrows alert listings. Zero values do not filter. Results are
// newest alert_date first, except DueBy listings which are oldest first.
type ListQuery struct {
	WarrantyID int64
	// DueBy keeps unsent alerts whose alert_date is on or before the date.
	DueBy *types.Date
}

// Repository persists alerts. At most one alert exists per warranty and type.
type Repository interface {
	List(ctx context.Context, q ListQuery) ([]models.Alert, error)
	// Create inserts the alert and reports false when one of the same type
	// already exists for the warranty.
	Create(ctx context.Context, a *models.Alert) (bool, error)
	MarkSent(ctx context.Context, id int64, at time.Time) (*models.Alert, error)
	Delete(ctx context.Context, id int64) error
	DeleteForWarranty(ctx context.Context, warrantyID int64) error
}

// GormRepository stores alerts in Postgres or SQLite.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context, q ListQuery) ([]models.Alert, error) {
	query := r.db.WithContext(ctx).Model(&models.Alert{})
	if q.WarrantyID != 0 {
		query = query.Where("warranty_id = ?", q.WarrantyID)
	}
	if q.DueBy != nil {
		query = query.Where("sent = ? AND alert_date <= ?", false, *q.DueBy)
	}

	order := "alert_date DESC, id DESC"
	if q.DueBy != nil {
		order = "alert_date ASC, id ASC"
	}

	var rows []models.Alert
	if err := query.Order(order).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepository) Create(ctx context.Context, a *models.Alert) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) MarkSent(ctx context.Context, id int64, at time.Time) (*models.Alert, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id = ?", id).
		Updates(map[string]any{"sent": true, "sent_at": at})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var a models.Alert
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Alert{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) DeleteForWarranty(ctx context.Context, warrantyID int64) error {
	return r.db.WithContext(ctx).Delete(&models.Alert{}, "warranty_id = ?", warrantyID).Error
}

// MemoryRepository keeps alerts in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	rows   []models.Alert
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) List(_ context.Context, q ListQuery) ([]models.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Alert, 0, len(r.rows))
	for _, a := range r.rows {
		if q.WarrantyID != 0 && a.WarrantyID != q.WarrantyID {
			continue
		}
		if q.DueBy != nil && (a.Sent || a.AlertDate.After(*q.DueBy)) {
			continue
		}
		out = append(out, a)
	}
	ascending := q.DueBy != nil
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !ascending {
			a, b = b, a
		}
		if !a.AlertDate.Equal(b.AlertDate) {
			return a.AlertDate.Before(b.AlertDate)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, a *models.Alert) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rows {
		if existing.WarrantyID == a.WarrantyID && existing.AlertType == a.AlertType {
			return false, nil
		}
	}
	r.nextID++
	a.ID = r.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, *a)
	return true, nil
}

func (r *MemoryRepository) MarkSent(_ context.Context, id int64, at time.Time) (*models.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].Sent = true
			r.rows[i].SentAt = &at
			a := r.rows[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) DeleteForWarranty(_ context.Context, warrantyID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.rows[:0]
	for _, a := range r.rows {
		if a.WarrantyID != warrantyID {
			kept = append(kept, a)
		}
	}
	r.rows = kept
	return nil
}
