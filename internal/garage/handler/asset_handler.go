package handler

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dldldl232/3d-car-customizer/internal/garage/service"
	"github.com/gin-gonic/gin"
)

// AssetHandler 模型资产上传处理器
type AssetHandler struct {
	svc *service.AssetService
}

func NewAssetHandler(svc *service.AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// Upload 上传GLB/缩略图资产，返回对象存储引用
// POST /api/v1/assets (multipart form: file)
func (h *AssetHandler) Upload(c *gin.Context) {
	if !IsCurator(c) {
		Forbidden(c, "仅策展员可上传资产")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少file字段: "+err.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, "读取上传文件失败: "+err.Error())
		return
	}
	defer src.Close()

	key := fmt.Sprintf("assets/%d%s", time.Now().UnixNano(), filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ref, err := h.svc.Upload(c.Request.Context(), key, contentType, file.Size, src)
	if err != nil {
		handleServiceError(c, err, "上传资产失败")
		return
	}
	Created(c, gin.H{"ref": ref, "url": h.svc.ResolveURL(c.Request.Context(), ref)})
}
