package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_garage"
	JWTSecret  = "car-customizer-test-jwt-secret"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is dropped on cleanup. Tests are
// skipped when no database is reachable so the pure-logic suites still run.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "garage")
	password := getEnv("DB_PASSWORD", "garage123")
	dbname := getEnv("DB_NAME", "car_customizer")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	if sqlDB, dbErr := setupDB.DB(); dbErr == nil {
		if pingErr := sqlDB.Ping(); pingErr != nil {
			sqlDB.Close()
			t.Skipf("test database unavailable: %v", pingErr)
		}
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in DSN so all pooled connections use the test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.CarModel{},
		&entity.Anchor{},
		&entity.Part{},
		&entity.CarModelPart{},
		&entity.PartCompatibility{},
		&entity.Fitment{},
		&entity.SavedCar{},
		&entity.SavedCarPart{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	// 自然键partial unique索引，与生产迁移一致
	db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_fitment_user_key
		ON fitments (car_model_id, part_id, anchor_id, part_variant_hash, scope, created_by_user_id)
		WHERE scope = 'user'`)
	db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_fitment_shared_key
		ON fitments (car_model_id, part_id, anchor_id, part_variant_hash, scope)
		WHERE scope <> 'user'`)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// OptionalAuthGroup creates an API group where anonymous requests pass through
func OptionalAuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.OptionalJWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID int64, name, email string, isCurator bool) string {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:    userID,
		Email:     email,
		Name:      name,
		IsCurator: isCurator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			Issuer:    "car-customizer",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedUser creates a test user
func SeedUser(t *testing.T, db *gorm.DB, email string, isCurator bool) *entity.User {
	t.Helper()
	user := &entity.User{
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
		IsCurator:    isCurator,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedCarModel creates a test car model
func SeedCarModel(t *testing.T, db *gorm.DB, name string, unitScale float64) *entity.CarModel {
	t.Helper()
	car := &entity.CarModel{
		Name:          name,
		UnitScale:     unitScale,
		ScaleFactor:   1.0,
		DefaultUpAxis: "Y",
	}
	if err := db.Create(car).Error; err != nil {
		t.Fatalf("Failed to seed car model: %v", err)
	}
	return car
}

// SeedAnchor creates a test anchor on a car model
func SeedAnchor(t *testing.T, db *gorm.DB, carModelID int64, name, anchorType string) *entity.Anchor {
	t.Helper()
	anchor := &entity.Anchor{
		CarModelID: carModelID,
		Name:       name,
		Type:       anchorType,
		ScaleX:     1.0,
		ScaleY:     1.0,
		ScaleZ:     1.0,
	}
	if err := db.Create(anchor).Error; err != nil {
		t.Fatalf("Failed to seed anchor: %v", err)
	}
	return anchor
}

// SeedPart creates a test part
func SeedPart(t *testing.T, db *gorm.DB, name, category string) *entity.Part {
	t.Helper()
	part := &entity.Part{
		Name:      name,
		Type:      category,
		Category:  category,
		PivotHint: "center",
	}
	if err := db.Create(part).Error; err != nil {
		t.Fatalf("Failed to seed part: %v", err)
	}
	return part
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
