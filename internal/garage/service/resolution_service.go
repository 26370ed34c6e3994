package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dldldl232/3d-car-customizer/internal/config"
	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
	"github.com/dldldl232/3d-car-customizer/internal/shared/placement"
	"github.com/redis/go-redis/v9"
)

// Resolution 解析结果：变换 + 来源元数据
type Resolution struct {
	Transform    placement.Transform `json:"transform"`
	Source       string              `json:"source"` // user / global / auto
	QualityScore *float64            `json:"quality_score,omitempty"`
	FitmentID    string              `json:"fitment_id,omitempty"`
	Version      int                 `json:"version,omitempty"`
}

// ResolutionService 放置解析引擎。
// 优先级: 用户覆盖 → 全局最优 → 启发式推断。只读，无副作用。
type ResolutionService struct {
	fitmentRepo *repository.FitmentRepository
	carRepo     *repository.CarModelRepository
	partRepo    *repository.PartRepository
	rdb         *redis.Client
	cfg         *config.Config
}

func NewResolutionService(
	fitmentRepo *repository.FitmentRepository,
	carRepo *repository.CarModelRepository,
	partRepo *repository.PartRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *ResolutionService {
	return &ResolutionService{
		fitmentRepo: fitmentRepo,
		carRepo:     carRepo,
		partRepo:    partRepo,
		rdb:         rdb,
		cfg:         cfg,
	}
}

// Resolve 解析(car, part, anchor, variant)的放置变换。
// 用户覆盖永远优先于全局记录，不论quality_score高低。
// 该函数没有失败路径：实体缺失时退化为启发式/单位变换，渲染永不被阻塞。
func (s *ResolutionService) Resolve(ctx context.Context, key repository.FitmentKey, userID *int64) *Resolution {
	if cached := s.cacheGet(ctx, key, userID); cached != nil {
		return cached
	}

	res := s.resolve(ctx, key, userID)
	s.cachePut(ctx, key, userID, res)
	return res
}

func (s *ResolutionService) resolve(ctx context.Context, key repository.FitmentKey, userID *int64) *Resolution {
	// 1. 用户自己的修正
	if userID != nil {
		if fitment, err := s.fitmentRepo.FindUserFitment(ctx, key, *userID); err == nil {
			if t, ok := placement.ParseTransform(fitment.TransformOverride); ok {
				score := fitment.QualityScore
				return &Resolution{
					Transform:    t,
					Source:       "user",
					QualityScore: &score,
					FitmentID:    fitment.ID,
					Version:      fitment.Version,
				}
			}
		}
	}

	// 2. 全局最优（quality_score降序，同分取最近更新）
	if fitment, err := s.fitmentRepo.FindBestScoped(ctx, key, entity.ScopeGlobal); err == nil {
		if t, ok := placement.ParseTransform(fitment.TransformOverride); ok {
			score := fitment.QualityScore
			return &Resolution{
				Transform:    t,
				Source:       "global",
				QualityScore: &score,
				FitmentID:    fitment.ID,
				Version:      fitment.Version,
			}
		}
	}

	// 3. 启发式推断。实体查不到时传nil，引擎退化为单位变换。
	return &Resolution{
		Transform: placement.ComputeAutoPlacement(s.loadSeeds(ctx, key)),
		Source:    "auto",
	}
}

// loadSeeds 通过外部查询接口加载启发式引擎输入；任一查询失败返回nil
func (s *ResolutionService) loadSeeds(ctx context.Context, key repository.FitmentKey) (*placement.AnchorSeed, *placement.PartSpec, *placement.CarSpec) {
	var anchorSeed *placement.AnchorSeed
	var partSpec *placement.PartSpec
	var carSpec *placement.CarSpec

	if anchor, err := s.carRepo.FindAnchorByID(ctx, key.AnchorID); err == nil {
		anchorSeed = AnchorToSeed(anchor)
	}
	if part, err := s.partRepo.FindByID(ctx, key.PartID); err == nil {
		partSpec = PartToSpec(part)
	}
	if car, err := s.carRepo.FindByID(ctx, key.CarModelID); err == nil {
		carSpec = &placement.CarSpec{UnitScale: car.UnitScale}
	}
	return anchorSeed, partSpec, carSpec
}

// AnchorToSeed 实体→引擎输入适配
func AnchorToSeed(anchor *entity.Anchor) *placement.AnchorSeed {
	seed := &placement.AnchorSeed{
		Transform: placement.Transform{
			Position:      [3]float64{anchor.PosX, anchor.PosY, anchor.PosZ},
			RotationEuler: [3]float64{anchor.RotX, anchor.RotY, anchor.RotZ},
			Scale:         [3]float64{anchor.ScaleX, anchor.ScaleY, anchor.ScaleZ},
		},
		Category: anchor.Type,
		Metadata: anchor.Metadata,
	}
	if anchor.ExpectedDiameter != nil {
		seed.ExpectedDiameter = *anchor.ExpectedDiameter
	}
	return seed
}

// PartToSpec 实体→引擎输入适配
func PartToSpec(part *entity.Part) *placement.PartSpec {
	return &placement.PartSpec{
		Category:      part.Category,
		Type:          part.Type,
		PivotHint:     part.PivotHint,
		IntrinsicSize: part.IntrinsicSize,
	}
}

// === 解析缓存 ===
// epoch键按自然键递增，写路径bump后旧缓存即失效。
// redis不可用时静默跳过——解析路径不允许失败。

func fitmentEpochKey(key repository.FitmentKey) string {
	return fmt.Sprintf("fitment:epoch:%d:%d:%d:%s", key.CarModelID, key.PartID, key.AnchorID, key.VariantHash)
}

func bumpFitmentEpoch(ctx context.Context, rdb *redis.Client, key repository.FitmentKey) {
	if rdb == nil {
		return
	}
	rdb.Incr(ctx, fitmentEpochKey(key))
}

func (s *ResolutionService) cacheKey(ctx context.Context, key repository.FitmentKey, userID *int64) string {
	epoch, _ := s.rdb.Get(ctx, fitmentEpochKey(key)).Int64()
	who := "anon"
	if userID != nil {
		who = fmt.Sprintf("%d", *userID)
	}
	return fmt.Sprintf("fitment:resolve:%d:%d:%d:%d:%s:%s",
		epoch, key.CarModelID, key.PartID, key.AnchorID, key.VariantHash, who)
}

func (s *ResolutionService) cacheGet(ctx context.Context, key repository.FitmentKey, userID *int64) *Resolution {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, s.cacheKey(ctx, key, userID)).Result()
	if err != nil {
		return nil
	}
	var res Resolution
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil
	}
	return &res
}

func (s *ResolutionService) cachePut(ctx context.Context, key repository.FitmentKey, userID *int64, res *Resolution) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	ttl := s.cfg.Placement.ResolveCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	s.rdb.Set(ctx, s.cacheKey(ctx, key, userID), data, ttl)
}
