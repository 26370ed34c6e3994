package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
	"github.com/xuri/excelize/v2"
)

// PartService 部件服务
type PartService struct {
	repo  *repository.PartRepository
	asset *AssetService
}

func NewPartService(repo *repository.PartRepository, asset *AssetService) *PartService {
	return &PartService{repo: repo, asset: asset}
}

// Get 查询部件
func (s *PartService) Get(ctx context.Context, id int64) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveAssets(ctx, part)
	return part, nil
}

// List 部件列表，category可选
func (s *PartService) List(ctx context.Context, category string) ([]entity.Part, error) {
	parts, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, err
	}
	for i := range parts {
		s.resolveAssets(ctx, &parts[i])
	}
	return parts, nil
}

// ListByCarModel 查询与车型兼容的部件
func (s *PartService) ListByCarModel(ctx context.Context, carModelID int64) ([]entity.Part, error) {
	parts, err := s.repo.ListByCarModel(ctx, carModelID)
	if err != nil {
		return nil, err
	}
	for i := range parts {
		s.resolveAssets(ctx, &parts[i])
	}
	return parts, nil
}

// ListCompatible 查询与指定部件兼容的部件
func (s *PartService) ListCompatible(ctx context.Context, partID int64) ([]entity.Part, error) {
	if _, err := s.repo.FindByID(ctx, partID); err != nil {
		return nil, err
	}
	return s.repo.ListCompatible(ctx, partID)
}

// Create 创建部件
func (s *PartService) Create(ctx context.Context, part *entity.Part) error {
	if part.PivotHint == "" {
		part.PivotHint = "center"
	}
	return s.repo.Create(ctx, part)
}

// Update 更新部件
func (s *PartService) Update(ctx context.Context, id int64, updated *entity.Part) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	part.Name = updated.Name
	part.Type = updated.Type
	part.Category = updated.Category
	part.Price = updated.Price
	if updated.GLBURL != "" {
		part.GLBURL = updated.GLBURL
	}
	if updated.ThumbnailURL != "" {
		part.ThumbnailURL = updated.ThumbnailURL
	}
	if updated.IntrinsicSize != "" {
		part.IntrinsicSize = updated.IntrinsicSize
	}
	if updated.PivotHint != "" {
		part.PivotHint = updated.PivotHint
	}
	if updated.AttachTo != "" {
		part.AttachTo = updated.AttachTo
	}
	if updated.MaterialVariant != "" {
		part.MaterialVariant = updated.MaterialVariant
	}
	if err := s.repo.Update(ctx, part); err != nil {
		return nil, err
	}
	return part, nil
}

// Delete 删除部件
func (s *PartService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// LinkToCarModel 建立车型兼容关联
func (s *PartService) LinkToCarModel(ctx context.Context, carModelID, partID int64) error {
	if _, err := s.repo.FindByID(ctx, partID); err != nil {
		return err
	}
	return s.repo.LinkToCarModel(ctx, carModelID, partID)
}

// CostEstimate 配置价格估算结果
type CostEstimate struct {
	Parts []CostLine `json:"parts"`
	Total float64    `json:"total"`
}

type CostLine struct {
	PartID int64   `json:"part_id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

// EstimateCost 按部件ID集合估算总价，重复ID只计一次
func (s *PartService) EstimateCost(ctx context.Context, partIDs []int64) (*CostEstimate, error) {
	seen := make(map[int64]bool, len(partIDs))
	unique := make([]int64, 0, len(partIDs))
	for _, id := range partIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	parts, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	est := &CostEstimate{Parts: make([]CostLine, 0, len(parts))}
	for _, p := range parts {
		est.Parts = append(est.Parts, CostLine{PartID: p.ID, Name: p.Name, Price: p.Price})
		est.Total += p.Price
	}
	return est, nil
}

// ExportCatalog 导出部件目录为Excel
func (s *PartService) ExportCatalog(ctx context.Context, category string) (*bytes.Buffer, error) {
	parts, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Parts"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Type", "Category", "Price", "Pivot", "Attach To", "Material", "Source"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range parts {
		values := []interface{}{p.ID, p.Name, p.Type, p.Category, p.Price, p.PivotHint, p.AttachTo, p.MaterialVariant, p.SourceURL}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write catalog workbook: %w", err)
	}
	return buf, nil
}

func (s *PartService) resolveAssets(ctx context.Context, part *entity.Part) {
	part.GLBURL = s.asset.ResolveURL(ctx, part.GLBURL)
	part.ThumbnailURL = s.asset.ResolveURL(ctx, part.ThumbnailURL)
}
