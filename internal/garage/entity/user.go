package entity

import "time"

// User 用户实体
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email" gorm:"size:128;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;size:128;not null"`
	FirstName    string    `json:"first_name" gorm:"size:64"`
	LastName     string    `json:"last_name" gorm:"size:64"`
	IsCurator    bool      `json:"is_curator" gorm:"default:false"` // org/global fitment 管理权限
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
