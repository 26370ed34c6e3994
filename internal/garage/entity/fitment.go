package entity

import "time"

// Fitment scope 取值
const (
	ScopeUser   = "user"
	ScopeOrg    = "org"
	ScopeGlobal = "global"
)

// Fitment 放置覆盖记录。
// 自然键: (car_model_id, part_id, anchor_id, part_variant_hash, scope[, created_by_user_id])，
// 同键重复创建必须收敛为更新，由部分唯一索引兜底（见main.go迁移SQL）。
type Fitment struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	CarModelID        int64     `json:"car_model_id" gorm:"not null;index:idx_fitment_key,priority:1"`
	PartID            int64     `json:"part_id" gorm:"not null;index:idx_fitment_key,priority:2"`
	AnchorID          int64     `json:"anchor_id" gorm:"not null;index:idx_fitment_key,priority:3"`
	PartVariantHash   string    `json:"part_variant_hash" gorm:"size:64;index:idx_fitment_key,priority:4"`
	TransformOverride string    `json:"transform_override" gorm:"type:jsonb;not null"`
	QualityScore      float64   `json:"quality_score" gorm:"default:0.5"` // [0,1]
	Scope             string    `json:"scope" gorm:"size:8;not null;default:user"`
	CreatedByUserID   *int64    `json:"created_by_user_id,omitempty" gorm:"index"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int       `json:"version" gorm:"not null;default:1"`
}

func (Fitment) TableName() string {
	return "fitments"
}
