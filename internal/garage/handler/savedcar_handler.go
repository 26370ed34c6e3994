package handler

import (
	"github.com/dldldl232/3d-car-customizer/internal/garage/service"
	"github.com/gin-gonic/gin"
)

// SavedCarHandler 改装方案处理器
type SavedCarHandler struct {
	svc *service.SavedCarService
}

func NewSavedCarHandler(svc *service.SavedCarService) *SavedCarHandler {
	return &SavedCarHandler{svc: svc}
}

// Save 保存改装方案
// POST /api/v1/saved-cars
func (h *SavedCarHandler) Save(c *gin.Context) {
	var req service.SaveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的方案参数: "+err.Error())
		return
	}
	car, err := h.svc.Save(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		handleServiceError(c, err, "保存方案失败")
		return
	}
	Created(c, car)
}

// List 当前用户的方案列表
// GET /api/v1/saved-cars
func (h *SavedCarHandler) List(c *gin.Context) {
	cars, err := h.svc.ListMine(c.Request.Context(), GetUserID(c))
	if err != nil {
		handleServiceError(c, err, "获取方案列表失败")
		return
	}
	Success(c, gin.H{"items": cars})
}

// Get 方案详情
// GET /api/v1/saved-cars/:id
func (h *SavedCarHandler) Get(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	car, err := h.svc.Get(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		handleServiceError(c, err, "获取方案失败")
		return
	}
	Success(c, car)
}

// Delete 删除方案
// DELETE /api/v1/saved-cars/:id
func (h *SavedCarHandler) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), GetUserID(c), id); err != nil {
		handleServiceError(c, err, "删除方案失败")
		return
	}
	Success(c, gin.H{"deleted": id})
}
