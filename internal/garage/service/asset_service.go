package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// AssetService GLB/缩略图对象存储访问。
// 字段存对象key时签发临时URL；已是完整URL（外部托管资产）时原样返回。
type AssetService struct {
	client *minio.Client
	bucket string
}

func NewAssetService(client *minio.Client, bucket string) *AssetService {
	return &AssetService{client: client, bucket: bucket}
}

// ResolveURL 将存储字段转为可访问URL
func (s *AssetService) ResolveURL(ctx context.Context, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if s.client == nil {
		return ref
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, ref, 1*time.Hour, url.Values{})
	if err != nil {
		return ref
	}
	return presigned.String()
}

// Upload 上传资产对象，返回对象key
func (s *AssetService) Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}
	return key, nil
}
