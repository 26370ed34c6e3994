package repository

import (
	"context"
	"errors"

	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"gorm.io/gorm"
)

// CarModelRepository 车型仓库
type CarModelRepository struct {
	db *gorm.DB
}

func NewCarModelRepository(db *gorm.DB) *CarModelRepository {
	return &CarModelRepository{db: db}
}

// FindByID 根据ID查询车型
func (r *CarModelRepository) FindByID(ctx context.Context, id int64) (*entity.CarModel, error) {
	var car entity.CarModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&car).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &car, nil
}

// List 车型列表
func (r *CarModelRepository) List(ctx context.Context) ([]entity.CarModel, error) {
	var cars []entity.CarModel
	err := r.db.WithContext(ctx).Order("id ASC").Find(&cars).Error
	return cars, err
}

// Create 创建车型
func (r *CarModelRepository) Create(ctx context.Context, car *entity.CarModel) error {
	return r.db.WithContext(ctx).Create(car).Error
}

// Update 更新车型
func (r *CarModelRepository) Update(ctx context.Context, car *entity.CarModel) error {
	return r.db.WithContext(ctx).Save(car).Error
}

// Delete 删除车型
func (r *CarModelRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&entity.CarModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindAnchorByID 根据ID查询锚点
func (r *CarModelRepository) FindAnchorByID(ctx context.Context, id int64) (*entity.Anchor, error) {
	var anchor entity.Anchor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&anchor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &anchor, nil
}

// ListAnchors 车型的锚点列表
func (r *CarModelRepository) ListAnchors(ctx context.Context, carModelID int64) ([]entity.Anchor, error) {
	var anchors []entity.Anchor
	err := r.db.WithContext(ctx).
		Where("car_model_id = ?", carModelID).
		Order("name ASC").
		Find(&anchors).Error
	return anchors, err
}

// FindAnchorByName 根据车型+名称查询锚点
func (r *CarModelRepository) FindAnchorByName(ctx context.Context, carModelID int64, name string) (*entity.Anchor, error) {
	var anchor entity.Anchor
	err := r.db.WithContext(ctx).
		Where("car_model_id = ? AND name = ?", carModelID, name).
		First(&anchor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &anchor, nil
}

// FindAnchorByType 根据车型+类别查询第一个锚点
func (r *CarModelRepository) FindAnchorByType(ctx context.Context, carModelID int64, anchorType string) (*entity.Anchor, error) {
	var anchor entity.Anchor
	err := r.db.WithContext(ctx).
		Where("car_model_id = ? AND type = ?", carModelID, anchorType).
		Order("id ASC").
		First(&anchor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &anchor, nil
}

// FindAnchorByNameKeyword 根据车型+名称关键字模糊查询第一个锚点。
// 用于锚点type未规范标注、但命名里带部位词（wheel_FL_anchor等）的模型。
func (r *CarModelRepository) FindAnchorByNameKeyword(ctx context.Context, carModelID int64, keyword string) (*entity.Anchor, error) {
	var anchor entity.Anchor
	err := r.db.WithContext(ctx).
		Where("car_model_id = ? AND name ILIKE ?", carModelID, "%"+keyword+"%").
		Order("id ASC").
		First(&anchor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &anchor, nil
}

// CreateAnchor 创建锚点（模型整备工具使用）
func (r *CarModelRepository) CreateAnchor(ctx context.Context, anchor *entity.Anchor) error {
	return r.db.WithContext(ctx).Create(anchor).Error
}
