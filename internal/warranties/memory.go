package warranties

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// MemoryRepository keeps warranties in process memory in insertion order.
// Data is lost on restart.
type MemoryRepository struct {
	mu     sync.RWMutex
	rows   []models.Warranty
	nextID int64
	now    func() time.Time
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, now: time.Now}
}

func (r *MemoryRepository) List(_ context.Context, q ListQuery) ([]models.Warranty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Warranty, 0, len(r.rows))
	for _, w := range r.rows {
		if q.Category != "" && stringValue(w.Category) != q.Category {
			continue
		}
		if q.Supplier != "" && stringValue(w.Supplier) != q.Supplier {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*models.Warranty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	w := r.rows[idx]
	return &w, nil
}

func (r *MemoryRepository) FindByEndDate(_ context.Context, end types.Date) ([]models.Warranty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Warranty, 0)
	for _, w := range r.rows {
		if w.WarrantyEnd.Equal(end) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, w *models.Warranty) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now().UTC()
	w.ID = r.nextID
	w.CreatedAt = ts
	w.UpdatedAt = ts
	r.nextID++
	r.rows = append(r.rows, *w)
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, w *models.Warranty) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(w.ID)
	if idx < 0 {
		return ErrNotFound
	}
	w.CreatedAt = r.rows[idx].CreatedAt
	w.UpdatedAt = r.now().UTC()
	r.rows[idx] = *w
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	r.rows = append(r.rows[:idx], r.rows[idx+1:]...)
	return nil
}

func (r *MemoryRepository) indexOf(id int64) int {
	for i := range r.rows {
		if r.rows[i].ID == id {
			return i
		}
	}
	return -1
}
