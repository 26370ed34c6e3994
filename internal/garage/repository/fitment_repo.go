package repository

import (
	"context"
	"errors"

	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"gorm.io/gorm"
)

// FitmentKey 放置覆盖的自然键（scope/user之外的部分）
type FitmentKey struct {
	CarModelID  int64
	PartID      int64
	AnchorID    int64
	VariantHash string
}

// FitmentFilter 列表查询过滤条件
type FitmentFilter struct {
	CarModelID int64
	PartID     int64
	AnchorID   int64
	Scope      string
	UserID     *int64
}

// FitmentRepository 放置覆盖仓库。
// 查询返回平铺值记录，调用方不做关系图遍历。
type FitmentRepository struct {
	db *gorm.DB
}

func NewFitmentRepository(db *gorm.DB) *FitmentRepository {
	return &FitmentRepository{db: db}
}

// NewID 生成fitment ID
func (r *FitmentRepository) NewID() string {
	return generateID()
}

// FindByID 根据ID查询
func (r *FitmentRepository) FindByID(ctx context.Context, id string) (*entity.Fitment, error) {
	var fitment entity.Fitment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fitment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fitment, nil
}

func (r *FitmentRepository) keyQuery(ctx context.Context, key FitmentKey) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("car_model_id = ? AND part_id = ? AND anchor_id = ? AND part_variant_hash = ?",
			key.CarModelID, key.PartID, key.AnchorID, key.VariantHash)
}

// FindUserFitment 查询指定用户的user-scope记录
func (r *FitmentRepository) FindUserFitment(ctx context.Context, key FitmentKey, userID int64) (*entity.Fitment, error) {
	var fitment entity.Fitment
	err := r.keyQuery(ctx, key).
		Where("scope = ? AND created_by_user_id = ?", entity.ScopeUser, userID).
		First(&fitment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fitment, nil
}

// FindByNaturalKey 按自然键查询（user scope时必须带userID）
func (r *FitmentRepository) FindByNaturalKey(ctx context.Context, key FitmentKey, scope string, userID *int64) (*entity.Fitment, error) {
	query := r.keyQuery(ctx, key).Where("scope = ?", scope)
	if scope == entity.ScopeUser && userID != nil {
		query = query.Where("created_by_user_id = ?", *userID)
	}
	var fitment entity.Fitment
	err := query.First(&fitment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fitment, nil
}

// FindBestScoped 查询指定scope下的最优记录：
// quality_score降序，同分取最近更新。
func (r *FitmentRepository) FindBestScoped(ctx context.Context, key FitmentKey, scope string) (*entity.Fitment, error) {
	var fitment entity.Fitment
	err := r.keyQuery(ctx, key).
		Where("scope = ?", scope).
		Order("quality_score DESC, updated_at DESC").
		First(&fitment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fitment, nil
}

// Find 条件列表查询
func (r *FitmentRepository) Find(ctx context.Context, filter FitmentFilter) ([]entity.Fitment, error) {
	query := r.db.WithContext(ctx).Model(&entity.Fitment{})
	if filter.CarModelID != 0 {
		query = query.Where("car_model_id = ?", filter.CarModelID)
	}
	if filter.PartID != 0 {
		query = query.Where("part_id = ?", filter.PartID)
	}
	if filter.AnchorID != 0 {
		query = query.Where("anchor_id = ?", filter.AnchorID)
	}
	if filter.Scope != "" {
		query = query.Where("scope = ?", filter.Scope)
		if filter.Scope == entity.ScopeUser && filter.UserID != nil {
			query = query.Where("created_by_user_id = ?", *filter.UserID)
		}
	}
	var fitments []entity.Fitment
	err := query.Order("quality_score DESC, updated_at DESC").Find(&fitments).Error
	return fitments, err
}

// Create 创建记录。自然键冲突时返回gorm.ErrDuplicatedKey，
// 由调用方收敛为更新（见FitmentService.SaveFitment）。
func (r *FitmentRepository) Create(ctx context.Context, fitment *entity.Fitment) error {
	return r.db.WithContext(ctx).Create(fitment).Error
}

// Update 更新记录
func (r *FitmentRepository) Update(ctx context.Context, fitment *entity.Fitment) error {
	return r.db.WithContext(ctx).Save(fitment).Error
}

// Delete 删除记录
func (r *FitmentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Fitment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
