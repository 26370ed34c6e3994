package handler

import (
	"github.com/dldldl232/3d-car-customizer/internal/garage/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的注册参数: "+err.Error())
		return
	}
	user, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "注册失败")
		return
	}
	Created(c, user)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的登录参数: "+err.Error())
		return
	}
	tokens, user, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "登录失败")
		return
	}
	Success(c, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user":          user,
	})
}

// Me 当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		handleServiceError(c, err, "获取用户信息失败")
		return
	}
	Success(c, user)
}
