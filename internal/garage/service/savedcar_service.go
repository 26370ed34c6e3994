package service

import (
	"context"

	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
)

// SavedCarService 改装方案服务
type SavedCarService struct {
	repo     *repository.SavedCarRepository
	carModel *repository.CarModelRepository
}

func NewSavedCarService(repo *repository.SavedCarRepository, carModel *repository.CarModelRepository) *SavedCarService {
	return &SavedCarService{repo: repo, carModel: carModel}
}

// SaveReq 保存改装方案请求
type SaveReq struct {
	CarModelID int64   `json:"car_model_id" binding:"required"`
	Name       string  `json:"name"`
	PartIDs    []int64 `json:"part_ids"`
}

// Save 保存改装方案，重复部件ID去重
func (s *SavedCarService) Save(ctx context.Context, userID int64, req *SaveReq) (*entity.SavedCar, error) {
	if _, err := s.carModel.FindByID(ctx, req.CarModelID); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(req.PartIDs))
	partIDs := make([]int64, 0, len(req.PartIDs))
	for _, id := range req.PartIDs {
		if !seen[id] {
			seen[id] = true
			partIDs = append(partIDs, id)
		}
	}

	car := &entity.SavedCar{
		UserID:     userID,
		CarModelID: req.CarModelID,
		Name:       req.Name,
	}
	if err := s.repo.Create(ctx, car, partIDs); err != nil {
		return nil, err
	}
	return car, nil
}

// Get 查询方案，仅所有者可见
func (s *SavedCarService) Get(ctx context.Context, userID, id int64) (*entity.SavedCar, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if car.UserID != userID {
		return nil, ErrForbidden
	}
	return car, nil
}

// ListMine 当前用户的方案列表
func (s *SavedCarService) ListMine(ctx context.Context, userID int64) ([]entity.SavedCar, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Delete 删除方案，仅所有者可删
func (s *SavedCarService) Delete(ctx context.Context, userID, id int64) error {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if car.UserID != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
