package handler

import (
	"fmt"
	"time"

	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/service"
	"github.com/gin-gonic/gin"
)

// PartHandler 部件处理器
type PartHandler struct {
	svc *service.PartService
}

func NewPartHandler(svc *service.PartService) *PartHandler {
	return &PartHandler{svc: svc}
}

// List 部件列表，支持category过滤和car_model_id兼容过滤
// GET /api/v1/parts?category=wheel&car_model_id=1
func (h *PartHandler) List(c *gin.Context) {
	if carModelID := QueryInt64(c, "car_model_id"); carModelID > 0 {
		parts, err := h.svc.ListByCarModel(c.Request.Context(), carModelID)
		if err != nil {
			handleServiceError(c, err, "获取兼容部件失败")
			return
		}
		Success(c, gin.H{"items": parts})
		return
	}
	parts, err := h.svc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		handleServiceError(c, err, "获取部件列表失败")
		return
	}
	Success(c, gin.H{"items": parts})
}

// Get 部件详情
// GET /api/v1/parts/:id
func (h *PartHandler) Get(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	part, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "获取部件失败")
		return
	}
	Success(c, part)
}

// ListCompatible 兼容部件列表
// GET /api/v1/parts/:id/compatible
func (h *PartHandler) ListCompatible(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	parts, err := h.svc.ListCompatible(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "获取兼容部件失败")
		return
	}
	Success(c, gin.H{"items": parts})
}

// Create 创建部件
// POST /api/v1/parts
func (h *PartHandler) Create(c *gin.Context) {
	var part entity.Part
	if err := c.ShouldBindJSON(&part); err != nil {
		BadRequest(c, "无效的部件参数: "+err.Error())
		return
	}
	if part.Name == "" || part.Type == "" {
		BadRequest(c, "部件名称和类型不能为空")
		return
	}
	if err := h.svc.Create(c.Request.Context(), &part); err != nil {
		handleServiceError(c, err, "创建部件失败")
		return
	}
	Created(c, part)
}

// Update 更新部件
// PUT /api/v1/parts/:id
func (h *PartHandler) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var payload entity.Part
	if err := c.ShouldBindJSON(&payload); err != nil {
		BadRequest(c, "无效的部件参数: "+err.Error())
		return
	}
	part, err := h.svc.Update(c.Request.Context(), id, &payload)
	if err != nil {
		handleServiceError(c, err, "更新部件失败")
		return
	}
	Success(c, part)
}

// Delete 删除部件
// DELETE /api/v1/parts/:id
func (h *PartHandler) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "删除部件失败")
		return
	}
	Success(c, gin.H{"deleted": id})
}

// LinkToCarModel 建立车型兼容关联
// POST /api/v1/parts/:id/car-models/:car_id
func (h *PartHandler) LinkToCarModel(c *gin.Context) {
	partID, ok := ParseID(c, "id")
	if !ok {
		return
	}
	carID, ok := ParseID(c, "car_id")
	if !ok {
		return
	}
	if err := h.svc.LinkToCarModel(c.Request.Context(), carID, partID); err != nil {
		handleServiceError(c, err, "关联车型失败")
		return
	}
	Success(c, gin.H{"car_model_id": carID, "part_id": partID})
}

// EstimateCost 配置价格估算
// POST /api/v1/parts/estimate-cost
func (h *PartHandler) EstimateCost(c *gin.Context) {
	var req struct {
		PartIDs []int64 `json:"part_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的估算参数: "+err.Error())
		return
	}
	est, err := h.svc.EstimateCost(c.Request.Context(), req.PartIDs)
	if err != nil {
		handleServiceError(c, err, "估算价格失败")
		return
	}
	Success(c, est)
}

// ExportCatalog 导出部件目录Excel
// GET /api/v1/parts/export?category=wheel
func (h *PartHandler) ExportCatalog(c *gin.Context) {
	buf, err := h.svc.ExportCatalog(c.Request.Context(), c.Query("category"))
	if err != nil {
		handleServiceError(c, err, "导出目录失败")
		return
	}
	filename := fmt.Sprintf("parts-catalog-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
