package insights

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
)

// Repository persists generated insights.
type Repository interface {
	Create(ctx context.Context, insight *models.AIInsight) error
	// ListForWarranty returns a warranty's insights, newest first.
	ListForWarranty(ctx context.Context, warrantyID int64) ([]models.AIInsight, error)
	DeleteForWarranty(ctx context.Context, warrantyID int64) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, insight *models.AIInsight) error {
	return r.db.WithContext(ctx).Create(insight).Error
}

func (r *GormRepository) ListForWarranty(ctx context.Context, warrantyID int64) ([]models.AIInsight, error) {
	var rows []models.AIInsight
	err := r.db.WithContext(ctx).
		Where("warranty_id = ?", warrantyID).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepository) DeleteForWarranty(ctx context.Context, warrantyID int64) error {
	return r.db.WithContext(ctx).Delete(&models.AIInsight{}, "warranty_id = ?", warrantyID).Error
}

type MemoryRepository struct {
	mu     sync.RWMutex
	rows   []models.AIInsight
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, insight *models.AIInsight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	insight.ID = r.nextID
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, *insight)
	return nil
}

func (r *MemoryRepository) ListForWarranty(_ context.Context, warrantyID int64) ([]models.AIInsight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.AIInsight{}
	for _, row := range r.rows {
		if row.WarrantyID == warrantyID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryRepository) DeleteForWarranty(_ context.Context, warrantyID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.WarrantyID != warrantyID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}
