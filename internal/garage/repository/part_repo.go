package repository

import (
	"context"
	"errors"

	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"gorm.io/gorm"
)

// PartRepository 部件仓库
type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

// FindByID 根据ID查询部件
func (r *PartRepository) FindByID(ctx context.Context, id int64) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// FindByIDs 批量查询部件
func (r *PartRepository) FindByIDs(ctx context.Context, ids []int64) ([]entity.Part, error) {
	var parts []entity.Part
	if len(ids) == 0 {
		return parts, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&parts).Error
	return parts, err
}

// List 部件列表，category为空时返回全部
func (r *PartRepository) List(ctx context.Context, category string) ([]entity.Part, error) {
	var parts []entity.Part
	query := r.db.WithContext(ctx).Order("id ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Find(&parts).Error
	return parts, err
}

// ListByCarModel 查询与车型兼容的部件（显式join表，无backref遍历）
func (r *PartRepository) ListByCarModel(ctx context.Context, carModelID int64) ([]entity.Part, error) {
	var parts []entity.Part
	err := r.db.WithContext(ctx).
		Joins("JOIN car_model_parts ON car_model_parts.part_id = parts.id").
		Where("car_model_parts.car_model_id = ?", carModelID).
		Order("parts.id ASC").
		Find(&parts).Error
	return parts, err
}

// ListCompatible 查询与指定部件兼容的部件
func (r *PartRepository) ListCompatible(ctx context.Context, partID int64) ([]entity.Part, error) {
	var parts []entity.Part
	err := r.db.WithContext(ctx).
		Joins("JOIN part_compatibilities ON part_compatibilities.compatible_with_part_id = parts.id").
		Where("part_compatibilities.part_id = ?", partID).
		Find(&parts).Error
	return parts, err
}

// Create 创建部件
func (r *PartRepository) Create(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

// Update 更新部件
func (r *PartRepository) Update(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

// Delete 删除部件
func (r *PartRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&entity.Part{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkToCarModel 建立车型兼容关联
func (r *PartRepository) LinkToCarModel(ctx context.Context, carModelID, partID int64) error {
	link := entity.CarModelPart{CarModelID: carModelID, PartID: partID}
	return r.db.WithContext(ctx).
		Where(&link).
		FirstOrCreate(&link).Error
}
