package models

import "time"

// AIInsight stores a risk assessment generated for a warranty.
type AIInsight struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	WarrantyID      int64     `gorm:"column:warranty_id;not null"`
	InsightType     string    `gorm:"column:insight_type;not null"`
	ConfidenceScore float64   `gorm:"column:confidence_score;not null;default:0"`
	RiskScore       int       `gorm:"column:risk_score;not null;default:0"`
	Message         string    `gorm:"column:message;not null"`
	Recommendation  *string   `gorm:"column:recommendation"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AIInsight) TableName() string { return "ai_insights" }
