package service

import (
	"errors"

	"github.com/dldldl232/3d-car-customizer/internal/config"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidTransform 覆盖payload缺失/非数值分量，写入前拒绝
	ErrInvalidTransform = errors.New("invalid transform payload")
	// ErrInvalidQuality 质量分超出[0,1]
	ErrInvalidQuality = errors.New("quality score must be between 0 and 1")
	// ErrForbidden 非属主删除等越权操作
	ErrForbidden = errors.New("forbidden")
	// ErrEmailTaken 注册邮箱已存在
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 登录凭证错误
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Services 服务集合
type Services struct {
	Auth       *AuthService
	CarModel   *CarModelService
	Part       *PartService
	Fitment    *FitmentService
	Resolution *ResolutionService
	SavedCar   *SavedCarService
	Asset      *AssetService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	// 初始化MinIO客户端（未配置时资产URL原样透传）
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			minioClient = nil
		}
	}

	assetSvc := NewAssetService(minioClient, cfg.MinIO.Bucket)
	resolutionSvc := NewResolutionService(repos.Fitment, repos.CarModel, repos.Part, rdb, cfg)
	fitmentSvc := NewFitmentService(repos.Fitment, repos.CarModel, repos.Part, rdb, cfg)

	return &Services{
		Auth:       NewAuthService(repos.User, cfg),
		CarModel:   NewCarModelService(repos.CarModel, assetSvc),
		Part:       NewPartService(repos.Part, assetSvc),
		Fitment:    fitmentSvc,
		Resolution: resolutionSvc,
		SavedCar:   NewSavedCarService(repos.SavedCar, repos.CarModel),
		Asset:      assetSvc,
	}
}
