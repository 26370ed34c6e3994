package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dldldl232/3d-car-customizer/internal/config"
	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
	"github.com/dldldl232/3d-car-customizer/internal/shared/placement"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// FitmentService 放置覆盖写路径：校验、自然键upsert、版本递增
type FitmentService struct {
	fitmentRepo *repository.FitmentRepository
	carRepo     *repository.CarModelRepository
	partRepo    *repository.PartRepository
	rdb         *redis.Client
	cfg         *config.Config
}

func NewFitmentService(
	fitmentRepo *repository.FitmentRepository,
	carRepo *repository.CarModelRepository,
	partRepo *repository.PartRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *FitmentService {
	return &FitmentService{
		fitmentRepo: fitmentRepo,
		carRepo:     carRepo,
		partRepo:    partRepo,
		rdb:         rdb,
		cfg:         cfg,
	}
}

// SaveFitmentReq 保存覆盖请求
type SaveFitmentReq struct {
	CarModelID        int64           `json:"car_model_id" binding:"required"`
	PartID            int64           `json:"part_id" binding:"required"`
	AnchorID          int64           `json:"anchor_id" binding:"required"`
	PartVariantHash   string          `json:"part_variant_hash"`
	TransformOverride json.RawMessage `json:"transform_override" binding:"required"`
	Scope             string          `json:"scope"`
	QualityScore      *float64        `json:"quality_score"` // 显式提供时才更新
	Manual            bool            `json:"-"`             // 手动修正路径的信任加成
}

// SaveFitment 按自然键创建或更新覆盖记录。
// 已存在: 只改transform/updated_at/version(+1)，quality不动（除非显式提供）。
// 不存在: version=1，默认quality取配置（通用0.5 / 手动0.8）。
// 并发创建撞唯一索引时收敛为更新，Conflict不外露。
func (s *FitmentService) SaveFitment(ctx context.Context, req SaveFitmentReq, userID *int64) (*entity.Fitment, error) {
	if req.Scope == "" {
		req.Scope = entity.ScopeUser
	}
	if req.Scope == entity.ScopeUser && userID == nil {
		return nil, fmt.Errorf("user scope fitment requires an authenticated user: %w", ErrForbidden)
	}

	// 前置校验：引用实体必须存在
	if _, err := s.carRepo.FindByID(ctx, req.CarModelID); err != nil {
		return nil, fmt.Errorf("car model %d: %w", req.CarModelID, err)
	}
	if _, err := s.partRepo.FindByID(ctx, req.PartID); err != nil {
		return nil, fmt.Errorf("part %d: %w", req.PartID, err)
	}
	anchor, err := s.carRepo.FindAnchorByID(ctx, req.AnchorID)
	if err != nil {
		return nil, fmt.Errorf("anchor %d: %w", req.AnchorID, err)
	}
	if anchor.CarModelID != req.CarModelID {
		return nil, fmt.Errorf("anchor %d does not belong to car model %d: %w", req.AnchorID, req.CarModelID, repository.ErrNotFound)
	}

	// 变换校验：三组数值triple，坏payload不落库
	transform, ok := placement.ParseTransform(string(req.TransformOverride))
	if !ok {
		return nil, ErrInvalidTransform
	}
	if req.QualityScore != nil && (*req.QualityScore < 0 || *req.QualityScore > 1) {
		return nil, ErrInvalidQuality
	}

	key := repository.FitmentKey{
		CarModelID:  req.CarModelID,
		PartID:      req.PartID,
		AnchorID:    req.AnchorID,
		VariantHash: req.PartVariantHash,
	}

	existing, err := s.fitmentRepo.FindByNaturalKey(ctx, key, req.Scope, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return s.update(ctx, key, existing, transform, req.QualityScore)
	}

	fitment := &entity.Fitment{
		ID:                s.fitmentRepo.NewID(),
		CarModelID:        req.CarModelID,
		PartID:            req.PartID,
		AnchorID:          req.AnchorID,
		PartVariantHash:   req.PartVariantHash,
		TransformOverride: transform.Encode(),
		QualityScore:      s.defaultQuality(req),
		Scope:             req.Scope,
		Version:           1,
	}
	if req.Scope == entity.ScopeUser {
		fitment.CreatedByUserID = userID
	}

	if err := s.fitmentRepo.Create(ctx, fitment); err != nil {
		// 并发写同一自然键：落败方的create转为update
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, findErr := s.fitmentRepo.FindByNaturalKey(ctx, key, req.Scope, userID)
			if findErr != nil {
				return nil, err
			}
			return s.update(ctx, key, winner, transform, req.QualityScore)
		}
		return nil, err
	}

	bumpFitmentEpoch(ctx, s.rdb, key)
	return fitment, nil
}

func (s *FitmentService) update(ctx context.Context, key repository.FitmentKey, fitment *entity.Fitment, transform placement.Transform, quality *float64) (*entity.Fitment, error) {
	fitment.TransformOverride = transform.Encode()
	fitment.UpdatedAt = time.Now()
	fitment.Version++
	if quality != nil {
		fitment.QualityScore = *quality
	}
	if err := s.fitmentRepo.Update(ctx, fitment); err != nil {
		return nil, err
	}
	bumpFitmentEpoch(ctx, s.rdb, key)
	return fitment, nil
}

func (s *FitmentService) defaultQuality(req SaveFitmentReq) float64 {
	if req.Manual {
		return s.cfg.Placement.ManualQualityScore
	}
	return s.cfg.Placement.DefaultQualityScore
}

// ManualAdjustmentReq 前端手动修正保存请求。
// 不带anchor——由attach_to/类别匹配推断，与原始修正UI语义一致。
type ManualAdjustmentReq struct {
	CarModelID int64           `json:"car_model_id" binding:"required"`
	PartID     int64           `json:"part_id" binding:"required"`
	Transform  json.RawMessage `json:"transform" binding:"required"`
}

// SaveManualAdjustment 保存用户手动修正（user scope，信任加成质量分）
func (s *FitmentService) SaveManualAdjustment(ctx context.Context, req ManualAdjustmentReq, userID int64) (*entity.Fitment, error) {
	part, err := s.partRepo.FindByID(ctx, req.PartID)
	if err != nil {
		return nil, fmt.Errorf("part %d: %w", req.PartID, err)
	}

	anchor, err := s.matchAnchor(ctx, req.CarModelID, part)
	if err != nil {
		return nil, fmt.Errorf("no suitable anchor for part %d on car model %d: %w", req.PartID, req.CarModelID, repository.ErrNotFound)
	}

	return s.SaveFitment(ctx, SaveFitmentReq{
		CarModelID:        req.CarModelID,
		PartID:            req.PartID,
		AnchorID:          anchor.ID,
		PartVariantHash:   placement.VariantHash(part.GLBURL, part.IntrinsicSize, part.MaterialVariant),
		TransformOverride: req.Transform,
		Scope:             entity.ScopeUser,
		Manual:            true,
	}, &userID)
}

// matchAnchor 为部件匹配锚点: attach_to精确名 → 类别/type匹配 → 名称关键字兜底
func (s *FitmentService) matchAnchor(ctx context.Context, carModelID int64, part *entity.Part) (*entity.Anchor, error) {
	if part.AttachTo != "" {
		if anchor, err := s.carRepo.FindAnchorByName(ctx, carModelID, part.AttachTo); err == nil {
			return anchor, nil
		}
	}
	if anchor, err := s.carRepo.FindAnchorByType(ctx, carModelID, part.Category); err == nil {
		return anchor, nil
	}
	if anchor, err := s.carRepo.FindAnchorByType(ctx, carModelID, part.Type); err == nil {
		return anchor, nil
	}
	// 最后一层: type标注缺失但锚点命名带部位词的模型
	if keyword := anchorNameKeyword(part); keyword != "" {
		return s.carRepo.FindAnchorByNameKeyword(ctx, carModelID, keyword)
	}
	return nil, repository.ErrNotFound
}

// anchorNameKeyword 部件类别对应的锚点名称关键字，没有则不做模糊匹配
func anchorNameKeyword(part *entity.Part) string {
	if part.Category == "wheel" || part.Type == "wheels" {
		return "wheel"
	}
	if strings.Contains(strings.ToLower(part.Type), "headlight") {
		return "headlight"
	}
	return ""
}

// DeleteFitment 删除覆盖记录。
// user scope仅属主可删；org/global需要curator权限。
func (s *FitmentService) DeleteFitment(ctx context.Context, id string, userID int64, isCurator bool) error {
	fitment, err := s.fitmentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	switch fitment.Scope {
	case entity.ScopeUser:
		if fitment.CreatedByUserID == nil || *fitment.CreatedByUserID != userID {
			return ErrForbidden
		}
	default:
		if !isCurator {
			return ErrForbidden
		}
	}

	if err := s.fitmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	bumpFitmentEpoch(ctx, s.rdb, repository.FitmentKey{
		CarModelID:  fitment.CarModelID,
		PartID:      fitment.PartID,
		AnchorID:    fitment.AnchorID,
		VariantHash: fitment.PartVariantHash,
	})
	return nil
}

// ListFitments 条件列表
func (s *FitmentService) ListFitments(ctx context.Context, filter repository.FitmentFilter) ([]entity.Fitment, error) {
	return s.fitmentRepo.Find(ctx, filter)
}
