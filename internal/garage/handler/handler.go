package handler

import (
	"errors"
	"strconv"

	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
	"github.com/dldldl232/3d-car-customizer/internal/garage/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Auth     *AuthHandler
	CarModel *CarModelHandler
	Part     *PartHandler
	Fitment  *FitmentHandler
	SavedCar *SavedCarHandler
	Asset    *AssetHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc.Auth),
		CarModel: NewCarModelHandler(svc.CarModel),
		Part:     NewPartHandler(svc.Part),
		Fitment:  NewFitmentHandler(svc.Fitment, svc.Resolution),
		SavedCar: NewSavedCarHandler(svc.SavedCar),
		Asset:    NewAssetHandler(svc.Asset),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// handleServiceError 业务错误到响应码映射
func handleServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, action+": record not found")
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, action+": forbidden")
	case errors.Is(err, service.ErrInvalidTransform), errors.Is(err, service.ErrInvalidQuality):
		BadRequest(c, action+": "+err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	default:
		InternalError(c, action+": "+err.Error())
	}
}

// GetUserID 从上下文获取用户ID，未认证返回0
func GetUserID(c *gin.Context) int64 {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(int64); ok {
		return id
	}
	return 0
}

// GetOptionalUserID 从上下文获取用户ID，匿名返回nil
func GetOptionalUserID(c *gin.Context) *int64 {
	userID, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	if id, ok := userID.(int64); ok && id != 0 {
		return &id
	}
	return nil
}

// IsCurator 当前用户是否策展员
func IsCurator(c *gin.Context) bool {
	v, _ := c.Get("is_curator")
	curator, _ := v.(bool)
	return curator
}

// ParseID 解析路径中的数字ID
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "无效的"+name)
		return 0, false
	}
	return id, true
}

// QueryInt64 解析query中的数字参数，缺省返回0
func QueryInt64(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return v
}
