package models

import (
	"time"

	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// Alert is a scheduled expiry warning for a warranty.
type Alert struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	WarrantyID int64           `gorm:"column:warranty_id;not null"`
	AlertType  enums.AlertType `gorm:"column:alert_type;not null"`
	AlertDate  types.Date      `gorm:"column:alert_date;type:date;not null"`
	Sent       bool            `gorm:"column:sent;not null;default:false"`
	SentAt     *time.Time      `gorm:"column:sent_at"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Alert) TableName() string { return "alerts" }
