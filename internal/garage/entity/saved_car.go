package entity

import "time"

// SavedCar 用户保存的改装方案
type SavedCar struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"user_id" gorm:"not null;index"`
	CarModelID int64     `json:"car_model_id" gorm:"not null"`
	Name       string    `json:"name" gorm:"size:128"`
	CreatedAt  time.Time `json:"created_at"`

	// 非数据库字段
	PartIDs []int64 `json:"part_ids" gorm:"-"`
}

func (SavedCar) TableName() string {
	return "saved_cars"
}

// SavedCarPart 方案-部件关联
type SavedCarPart struct {
	SavedCarID int64 `json:"saved_car_id" gorm:"primaryKey"`
	PartID     int64 `json:"part_id" gorm:"primaryKey"`
}

func (SavedCarPart) TableName() string {
	return "saved_car_parts"
}
