package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dldldl232/3d-car-customizer/internal/config"
	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/handler"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
	"github.com/dldldl232/3d-car-customizer/internal/garage/service"
	"github.com/dldldl232/3d-car-customizer/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting car-customizer service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.CarModel{},
		&entity.Anchor{},
		&entity.Part{},
		&entity.CarModelPart{},
		&entity.PartCompatibility{},
		&entity.Fitment{},
		&entity.SavedCar{},
		&entity.SavedCarPart{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// 自然键partial unique索引。并发upsert依赖这两个索引收敛，
	// GORM标签表达不了partial index，用原始SQL
	migrationSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_fitment_user_key
			ON fitments (car_model_id, part_id, anchor_id, part_variant_hash, scope, created_by_user_id)
			WHERE scope = 'user'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_fitment_shared_key
			ON fitments (car_model_id, part_id, anchor_id, part_variant_hash, scope)
			WHERE scope <> 'user'`,
		`CREATE INDEX IF NOT EXISTS idx_fitments_quality
			ON fitments (quality_score DESC, updated_at DESC)`,
	}
	for _, sql := range migrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration SQL warning (may already exist)", zap.String("sql", sql), zap.Error(err))
		}
	}
	zapLogger.Info("Database migration completed")

	// 初始化Redis
	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unavailable, resolve cache disabled", zap.Error(err))
		rdb = nil
	}

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	// TranslateError: 并发创建覆盖记录时要识别gorm.ErrDuplicatedKey
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// 公开读路径：匿名可逛车库，带token则注入用户身份
		public := v1.Group("")
		public.Use(middleware.OptionalJWTAuth(cfg.JWT.Secret))
		{
			cars := public.Group("/cars")
			{
				cars.GET("", h.CarModel.List)
				cars.GET("/:id", h.CarModel.Get)
				cars.GET("/:id/anchors", h.CarModel.ListAnchors)
			}

			parts := public.Group("/parts")
			{
				parts.GET("", h.Part.List)
				parts.GET("/export", h.Part.ExportCatalog)
				parts.GET("/:id", h.Part.Get)
				parts.GET("/:id/compatible", h.Part.ListCompatible)
				parts.POST("/estimate-cost", h.Part.EstimateCost)
			}

			fitments := public.Group("/fitments")
			{
				fitments.GET("/resolve", h.Fitment.Resolve)
				fitments.GET("", h.Fitment.List)
			}
		}

		// 需要认证的接口
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)

			// 内容管理（curation工具使用）
			authorized.POST("/cars", h.CarModel.Create)
			authorized.PUT("/cars/:id", h.CarModel.Update)
			authorized.DELETE("/cars/:id", h.CarModel.Delete)
			authorized.POST("/cars/:id/anchors", h.CarModel.CreateAnchor)
			authorized.POST("/parts", h.Part.Create)
			authorized.PUT("/parts/:id", h.Part.Update)
			authorized.DELETE("/parts/:id", h.Part.Delete)
			authorized.POST("/parts/:id/car-models/:car_id", h.Part.LinkToCarModel)
			authorized.POST("/assets", h.Asset.Upload)

			// 放置覆盖写路径
			authorized.POST("/fitments", h.Fitment.Save)
			authorized.POST("/fitments/manual-adjustment", h.Fitment.SaveManualAdjustment)
			authorized.DELETE("/fitments/:id", h.Fitment.Delete)

			// 改装方案
			savedCars := authorized.Group("/saved-cars")
			{
				savedCars.POST("", h.SavedCar.Save)
				savedCars.GET("", h.SavedCar.List)
				savedCars.GET("/:id", h.SavedCar.Get)
				savedCars.DELETE("/:id", h.SavedCar.Delete)
			}
		}
	}
}
