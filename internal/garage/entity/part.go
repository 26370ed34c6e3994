package entity

import "time"

// Part 可安装的改装部件
type Part struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string    `json:"name" gorm:"size:128;not null"`
	Type            string    `json:"type" gorm:"size:32;not null;index"`    // e.g. wheels / exterior
	Category        string    `json:"category" gorm:"size:32;index"`         // e.g. wheel / spoiler / headlight
	Price           float64   `json:"price"`
	GLBURL          string    `json:"glb_url" gorm:"size:512"`
	ThumbnailURL    string    `json:"thumbnail_url" gorm:"size:512"`
	LicenseSlug     string    `json:"license_slug" gorm:"size:64"`
	LicenseURL      string    `json:"license_url" gorm:"size:512"`
	AttributionHTML string    `json:"attribution_html"`
	SourceURL       string    `json:"source_url" gorm:"size:512"`
	Uploader        string    `json:"uploader" gorm:"size:128"`
	SourceUID       string    `json:"source_uid" gorm:"size:64;index"`
	IntrinsicSize   string    `json:"intrinsic_size,omitempty" gorm:"type:jsonb"` // 几何尺寸descriptor
	NominalSize     float64   `json:"nominal_size"`                               // 标称尺寸(mm)
	PivotHint       string    `json:"pivot_hint" gorm:"size:16;default:center"`   // center / bottom-center / hub-center
	Symmetry        string    `json:"symmetry" gorm:"size:4"`                     // L / R / LR
	BoundingBox     string    `json:"bounding_box,omitempty" gorm:"type:jsonb"`
	AttachTo        string    `json:"attach_to" gorm:"size:64"` // 默认挂载锚点名
	MaterialVariant string    `json:"material_variant" gorm:"size:64"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Part) TableName() string {
	return "parts"
}

// CarModelPart 车型-部件兼容关联
type CarModelPart struct {
	CarModelID int64 `json:"car_model_id" gorm:"primaryKey"`
	PartID     int64 `json:"part_id" gorm:"primaryKey"`
}

func (CarModelPart) TableName() string {
	return "car_model_parts"
}

// PartCompatibility 部件间兼容关系
type PartCompatibility struct {
	ID                   int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	PartID               int64 `json:"part_id" gorm:"not null;index"`
	CompatibleWithPartID int64 `json:"compatible_with_part_id" gorm:"not null"`
}

func (PartCompatibility) TableName() string {
	return "part_compatibilities"
}
