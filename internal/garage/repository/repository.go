package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// generateID 生成32位ID
func generateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:32]
}

// Repositories 仓库集合
type Repositories struct {
	CarModel *CarModelRepository
	Part     *PartRepository
	Fitment  *FitmentRepository
	User     *UserRepository
	SavedCar *SavedCarRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		CarModel: NewCarModelRepository(db),
		Part:     NewPartRepository(db),
		Fitment:  NewFitmentRepository(db),
		User:     NewUserRepository(db),
		SavedCar: NewSavedCarRepository(db),
	}
}
