package models

import (
	"time"

	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
)

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID string         `gorm:"column:session_id;not null"`
	Role      enums.ChatRole `gorm:"column:role;not null"`
	Content   string         `gorm:"column:content;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (ChatMessage) TableName() string { return "chat_history" }
