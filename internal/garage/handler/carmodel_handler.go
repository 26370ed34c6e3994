package handler

import (
	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/service"
	"github.com/gin-gonic/gin"
)

// CarModelHandler 车型处理器
type CarModelHandler struct {
	svc *service.CarModelService
}

func NewCarModelHandler(svc *service.CarModelService) *CarModelHandler {
	return &CarModelHandler{svc: svc}
}

// List 车型列表
// GET /api/v1/cars
func (h *CarModelHandler) List(c *gin.Context) {
	cars, err := h.svc.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "获取车型列表失败")
		return
	}
	Success(c, gin.H{"items": cars})
}

// Get 车型详情
// GET /api/v1/cars/:id
func (h *CarModelHandler) Get(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	car, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "获取车型失败")
		return
	}
	Success(c, car)
}

// Create 创建车型
// POST /api/v1/cars
func (h *CarModelHandler) Create(c *gin.Context) {
	var car entity.CarModel
	if err := c.ShouldBindJSON(&car); err != nil {
		BadRequest(c, "无效的车型参数: "+err.Error())
		return
	}
	if car.Name == "" {
		BadRequest(c, "车型名称不能为空")
		return
	}
	if err := h.svc.Create(c.Request.Context(), &car); err != nil {
		handleServiceError(c, err, "创建车型失败")
		return
	}
	Created(c, car)
}

// Update 更新车型
// PUT /api/v1/cars/:id
func (h *CarModelHandler) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var payload entity.CarModel
	if err := c.ShouldBindJSON(&payload); err != nil {
		BadRequest(c, "无效的车型参数: "+err.Error())
		return
	}
	car, err := h.svc.Update(c.Request.Context(), id, &payload)
	if err != nil {
		handleServiceError(c, err, "更新车型失败")
		return
	}
	Success(c, car)
}

// Delete 删除车型
// DELETE /api/v1/cars/:id
func (h *CarModelHandler) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "删除车型失败")
		return
	}
	Success(c, gin.H{"deleted": id})
}

// ListAnchors 车型锚点列表
// GET /api/v1/cars/:id/anchors
func (h *CarModelHandler) ListAnchors(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	anchors, err := h.svc.ListAnchors(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "获取锚点列表失败")
		return
	}
	Success(c, gin.H{"items": anchors})
}

// CreateAnchor 为车型添加锚点
// POST /api/v1/cars/:id/anchors
func (h *CarModelHandler) CreateAnchor(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var anchor entity.Anchor
	if err := c.ShouldBindJSON(&anchor); err != nil {
		BadRequest(c, "无效的锚点参数: "+err.Error())
		return
	}
	if anchor.Name == "" || anchor.Type == "" {
		BadRequest(c, "锚点名称和类型不能为空")
		return
	}
	if err := h.svc.CreateAnchor(c.Request.Context(), id, &anchor); err != nil {
		handleServiceError(c, err, "创建锚点失败")
		return
	}
	Created(c, anchor)
}
