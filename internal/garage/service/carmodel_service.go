package service

import (
	"context"

	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
)

// CarModelService 车型服务
type CarModelService struct {
	repo  *repository.CarModelRepository
	asset *AssetService
}

func NewCarModelService(repo *repository.CarModelRepository, asset *AssetService) *CarModelService {
	return &CarModelService{repo: repo, asset: asset}
}

// Get 查询车型，资产字段转为可访问URL
func (s *CarModelService) Get(ctx context.Context, id int64) (*entity.CarModel, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveAssets(ctx, car)
	return car, nil
}

// List 车型列表
func (s *CarModelService) List(ctx context.Context) ([]entity.CarModel, error) {
	cars, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cars {
		s.resolveAssets(ctx, &cars[i])
	}
	return cars, nil
}

// Create 创建车型（外部curation工具使用）
func (s *CarModelService) Create(ctx context.Context, car *entity.CarModel) error {
	if car.UnitScale == 0 {
		car.UnitScale = 1.0
	}
	if car.ScaleFactor == 0 {
		car.ScaleFactor = 1.0
	}
	if car.DefaultUpAxis == "" {
		car.DefaultUpAxis = "Y"
	}
	return s.repo.Create(ctx, car)
}

// Update 更新车型
func (s *CarModelService) Update(ctx context.Context, id int64, updated *entity.CarModel) (*entity.CarModel, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	car.Name = updated.Name
	car.Manufacturer = updated.Manufacturer
	car.Year = updated.Year
	if updated.GLBURL != "" {
		car.GLBURL = updated.GLBURL
	}
	if updated.ThumbnailURL != "" {
		car.ThumbnailURL = updated.ThumbnailURL
	}
	if updated.UnitScale != 0 {
		car.UnitScale = updated.UnitScale
	}
	if updated.DefaultUpAxis != "" {
		car.DefaultUpAxis = updated.DefaultUpAxis
	}
	if err := s.repo.Update(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

// Delete 删除车型
func (s *CarModelService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ListAnchors 车型锚点列表
func (s *CarModelService) ListAnchors(ctx context.Context, carModelID int64) ([]entity.Anchor, error) {
	if _, err := s.repo.FindByID(ctx, carModelID); err != nil {
		return nil, err
	}
	return s.repo.ListAnchors(ctx, carModelID)
}

// CreateAnchor 为车型添加锚点（curation工具使用）
func (s *CarModelService) CreateAnchor(ctx context.Context, carModelID int64, anchor *entity.Anchor) error {
	if _, err := s.repo.FindByID(ctx, carModelID); err != nil {
		return err
	}
	anchor.CarModelID = carModelID
	if anchor.ScaleX == 0 && anchor.ScaleY == 0 && anchor.ScaleZ == 0 {
		anchor.ScaleX, anchor.ScaleY, anchor.ScaleZ = 1.0, 1.0, 1.0
	}
	return s.repo.CreateAnchor(ctx, anchor)
}

func (s *CarModelService) resolveAssets(ctx context.Context, car *entity.CarModel) {
	car.GLBURL = s.asset.ResolveURL(ctx, car.GLBURL)
	car.ThumbnailURL = s.asset.ResolveURL(ctx, car.ThumbnailURL)
}
