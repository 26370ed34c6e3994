package handler

import (
	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
	"github.com/dldldl232/3d-car-customizer/internal/garage/service"
	"github.com/gin-gonic/gin"
)

// FitmentHandler 放置覆盖/解析处理器
type FitmentHandler struct {
	svc        *service.FitmentService
	resolution *service.ResolutionService
}

func NewFitmentHandler(svc *service.FitmentService, resolution *service.ResolutionService) *FitmentHandler {
	return &FitmentHandler{svc: svc, resolution: resolution}
}

// Resolve 解析放置变换，匿名可用
// GET /api/v1/fitments/resolve?car_model_id=1&part_id=2&anchor_id=3&part_variant_hash=xxx
func (h *FitmentHandler) Resolve(c *gin.Context) {
	key := repository.FitmentKey{
		CarModelID:  QueryInt64(c, "car_model_id"),
		PartID:      QueryInt64(c, "part_id"),
		AnchorID:    QueryInt64(c, "anchor_id"),
		VariantHash: c.Query("part_variant_hash"),
	}
	if key.CarModelID <= 0 || key.PartID <= 0 || key.AnchorID <= 0 {
		BadRequest(c, "car_model_id/part_id/anchor_id不能为空")
		return
	}
	res := h.resolution.Resolve(c.Request.Context(), key, GetOptionalUserID(c))
	Success(c, res)
}

// List 覆盖记录列表
// GET /api/v1/fitments?car_model_id=1&part_id=2&scope=global&mine=true
func (h *FitmentHandler) List(c *gin.Context) {
	filter := repository.FitmentFilter{
		CarModelID: QueryInt64(c, "car_model_id"),
		PartID:     QueryInt64(c, "part_id"),
		AnchorID:   QueryInt64(c, "anchor_id"),
		Scope:      c.Query("scope"),
	}
	if c.Query("mine") == "true" {
		filter.UserID = GetOptionalUserID(c)
	}
	fitments, err := h.svc.ListFitments(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err, "获取覆盖记录失败")
		return
	}
	Success(c, gin.H{"items": fitments})
}

// Save 创建或更新覆盖记录
// POST /api/v1/fitments
func (h *FitmentHandler) Save(c *gin.Context) {
	var req service.SaveFitmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的覆盖参数: "+err.Error())
		return
	}
	// 共享scope写入需要curator权限
	if req.Scope != "" && req.Scope != entity.ScopeUser && !IsCurator(c) {
		Forbidden(c, "仅策展员可写入共享覆盖")
		return
	}
	fitment, err := h.svc.SaveFitment(c.Request.Context(), req, GetOptionalUserID(c))
	if err != nil {
		handleServiceError(c, err, "保存覆盖失败")
		return
	}
	if fitment.Version == 1 {
		Created(c, fitment)
		return
	}
	Success(c, fitment)
}

// SaveManualAdjustment 保存用户手动修正
// POST /api/v1/fitments/manual-adjustment
func (h *FitmentHandler) SaveManualAdjustment(c *gin.Context) {
	var req service.ManualAdjustmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的修正参数: "+err.Error())
		return
	}
	fitment, err := h.svc.SaveManualAdjustment(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		handleServiceError(c, err, "保存修正失败")
		return
	}
	Success(c, fitment)
}

// Delete 删除覆盖记录
// DELETE /api/v1/fitments/:id
func (h *FitmentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "无效的id")
		return
	}
	if err := h.svc.DeleteFitment(c.Request.Context(), id, GetUserID(c), IsCurator(c)); err != nil {
		handleServiceError(c, err, "删除覆盖失败")
		return
	}
	Success(c, gin.H{"deleted": id})
}
