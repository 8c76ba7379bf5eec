package warranties

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// ErrNotFound is returned by repositories when no warranty has the id.
var ErrNotFound = errors.New("warranty not found")

// ListQuery carries the exact-match filters a repository can apply itself.
type ListQuery struct {
	Category string
	Supplier string
}

// Repository persists warranties. Implementations return ErrNotFound for unknown ids.
type Repository interface {
	List(ctx context.Context, q ListQuery) ([]models.Warranty, error)
	FindByID(ctx context.Context, id int64) (*models.Warranty, error)
	FindByEndDate(ctx context.Context, end types.Date) ([]models.Warranty, error)
	Create(ctx context.Context, w *models.Warranty) error
	Update(ctx context.Context, w *models.Warranty) error
	Delete(ctx context.Context, id int64) error
}

// GormRepository stores warranties in Postgres or SQLite.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs a warranty repository tied to the provided GORM DB.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context, q ListQuery) ([]models.Warranty, error) {
	query := r.db.WithContext(ctx).Model(&models.Warranty{})
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.Supplier != "" {
		query = query.Where("supplier = ?", q.Supplier)
	}

	var rows []models.Warranty
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id int64) (*models.Warranty, error) {
	var w models.Warranty
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *GormRepository) FindByEndDate(ctx context.Context, end types.Date) ([]models.Warranty, error) {
	var rows []models.Warranty
	err := r.db.WithContext(ctx).
		Where("warranty_end = ?", end).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepository) Create(ctx context.Context, w *models.Warranty) error {
	return r.db.WithContext(ctx).Create(w).Error
}

// Update writes every column except id and created_at.
func (r *GormRepository) Update(ctx context.Context, w *models.Warranty) error {
	res := r.db.WithContext(ctx).
		Model(w).
		Select("*").
		Omit("id", "created_at").
		Updates(w)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Warranty{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
