package chat

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
)

// HistoryRepository stores chat turns per session.
type HistoryRepository interface {
	Append(ctx context.Context, messages ...models.ChatMessage) error
	// Recent returns up to limit of the newest turns, oldest first.
	Recent(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)
	Clear(ctx context.Context, sessionID string) (int64, error)
}

// GormHistory persists chat turns to chat_history.
type GormHistory struct {
	db *gorm.DB
}

// NewGormHistory constructs a history repository tied to the provided GORM DB.
func NewGormHistory(db *gorm.DB) *GormHistory {
	return &GormHistory{db: db}
}

func (r *GormHistory) Append(ctx context.Context, messages ...models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&messages).Error
}

func (r *GormHistory) Recent(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	reverse(rows)
	return rows, nil
}

func (r *GormHistory) Clear(ctx context.Context, sessionID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.ChatMessage{})
	return res.RowsAffected, res.Error
}

// DeleteOlderThan removes turns created before cutoff across all sessions.
func (r *GormHistory) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ChatMessage{})
	return res.RowsAffected, res.Error
}

// MemoryHistory keeps chat turns in process memory.
type MemoryHistory struct {
	mu       sync.RWMutex
	sessions map[string][]models.ChatMessage
	nextID   int64
}

// NewMemoryHistory returns an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{sessions: map[string][]models.ChatMessage{}}
}

func (r *MemoryHistory) Append(_ context.Context, messages ...models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, m := range messages {
		r.nextID++
		m.ID = r.nextID
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		r.sessions[m.SessionID] = append(r.sessions[m.SessionID], m)
	}
	return nil
}

func (r *MemoryHistory) Recent(_ context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.sessions[sessionID]
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]models.ChatMessage, len(rows))
	copy(out, rows)
	return out, nil
}

func (r *MemoryHistory) Clear(_ context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.sessions[sessionID]))
	delete(r.sessions, sessionID)
	return n, nil
}

func (r *MemoryHistory) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, rows := range r.sessions {
		kept := rows[:0]
		for _, m := range rows {
			if m.CreatedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			delete(r.sessions, id)
			continue
		}
		r.sessions[id] = kept
	}
	return removed, nil
}

func reverse(rows []models.ChatMessage) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
