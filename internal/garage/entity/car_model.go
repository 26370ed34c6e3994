package entity

import "time"

// CarModel 可定制的3D车型
type CarModel struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string    `json:"name" gorm:"size:128;not null"`
	Manufacturer    string    `json:"manufacturer" gorm:"size:128"`
	Year            int       `json:"year"`
	GLBURL          string    `json:"glb_url" gorm:"size:512"`
	ThumbnailURL    string    `json:"thumbnail_url" gorm:"size:512"`
	LicenseSlug     string    `json:"license_slug" gorm:"size:64"`
	LicenseURL      string    `json:"license_url" gorm:"size:512"`
	AttributionHTML string    `json:"attribution_html"`
	SourceURL       string    `json:"source_url" gorm:"size:512"`
	Uploader        string    `json:"uploader" gorm:"size:128"`
	SourceUID       string    `json:"source_uid" gorm:"size:64;index"`
	Bounds          string    `json:"bounds,omitempty" gorm:"type:jsonb"`
	ScaleFactor     float64   `json:"scale_factor" gorm:"default:1.0"`
	UnitScale       float64   `json:"unit_scale" gorm:"default:1.0"` // 米/模型单位
	DefaultUpAxis   string    `json:"default_up_axis" gorm:"size:4;default:Y"`
	AnchorsReady    bool      `json:"anchors_ready" gorm:"default:false"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CarModel) TableName() string {
	return "car_models"
}

// Anchor 车型上的部件挂载点，名称在车型内唯一
type Anchor struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CarModelID       int64     `json:"car_model_id" gorm:"not null;index;uniqueIndex:uq_anchor_car_name,priority:1"`
	Name             string    `json:"name" gorm:"size:64;not null;uniqueIndex:uq_anchor_car_name,priority:2"` // e.g. wheel_FL_anchor
	Type             string    `json:"type" gorm:"size:32;not null;index"`                                     // e.g. wheel / spoiler / headlight
	PosX             float64   `json:"pos_x"`
	PosY             float64   `json:"pos_y"`
	PosZ             float64   `json:"pos_z"`
	RotX             float64   `json:"rot_x"`
	RotY             float64   `json:"rot_y"`
	RotZ             float64   `json:"rot_z"`
	ScaleX           float64   `json:"scale_x" gorm:"default:1.0"`
	ScaleY           float64   `json:"scale_y" gorm:"default:1.0"`
	ScaleZ           float64   `json:"scale_z" gorm:"default:1.0"`
	Metadata         string    `json:"metadata,omitempty" gorm:"column:anchor_metadata;type:jsonb"` // radius/对称轴等扩展
	SymmetryPairID   *int64    `json:"symmetry_pair_id,omitempty"`                                  // FL <-> FR
	ExpectedDiameter *float64  `json:"expected_diameter,omitempty"`                                 // 轮毂期望直径
	Bounds           string    `json:"bounds,omitempty" gorm:"type:jsonb"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Anchor) TableName() string {
	return "anchors"
}
