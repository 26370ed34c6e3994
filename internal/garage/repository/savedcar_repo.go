package repository

import (
	"context"
	"errors"

	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"gorm.io/gorm"
)

// SavedCarRepository 改装方案仓库
type SavedCarRepository struct {
	db *gorm.DB
}

func NewSavedCarRepository(db *gorm.DB) *SavedCarRepository {
	return &SavedCarRepository{db: db}
}

// Create 创建方案并关联部件（单事务）
func (r *SavedCarRepository) Create(ctx context.Context, car *entity.SavedCar, partIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(car).Error; err != nil {
			return err
		}
		for _, partID := range partIDs {
			link := entity.SavedCarPart{SavedCarID: car.ID, PartID: partID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		car.PartIDs = partIDs
		return nil
	})
}

// FindByID 根据ID查询方案（含部件ID）
func (r *SavedCarRepository) FindByID(ctx context.Context, id int64) (*entity.SavedCar, error) {
	var car entity.SavedCar
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&car).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadPartIDs(ctx, &car); err != nil {
		return nil, err
	}
	return &car, nil
}

// ListByUser 用户的方案列表（含部件ID）
func (r *SavedCarRepository) ListByUser(ctx context.Context, userID int64) ([]entity.SavedCar, error) {
	var cars []entity.SavedCar
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&cars).Error
	if err != nil {
		return nil, err
	}
	for i := range cars {
		if err := r.loadPartIDs(ctx, &cars[i]); err != nil {
			return nil, err
		}
	}
	return cars, nil
}

// Delete 删除方案及其关联
func (r *SavedCarRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("saved_car_id = ?", id).Delete(&entity.SavedCarPart{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.SavedCar{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *SavedCarRepository) loadPartIDs(ctx context.Context, car *entity.SavedCar) error {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&entity.SavedCarPart{}).
		Where("saved_car_id = ?", car.ID).
		Pluck("part_id", &ids).Error
	if err != nil {
		return err
	}
	car.PartIDs = ids
	return nil
}
