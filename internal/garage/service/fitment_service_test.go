package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dldldl232/3d-car-customizer/internal/config"
	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
	"github.com/dldldl232/3d-car-customizer/internal/garage/testutil"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Placement: config.PlacementConfig{
			DefaultQualityScore: 0.5,
			ManualQualityScore:  0.8,
		},
	}
}

type fitmentTestEnv struct {
	db       *gorm.DB
	fitments *FitmentService
	repos    *repository.Repositories
	car      *entity.CarModel
	anchor   *entity.Anchor
	part     *entity.Part
}

func setupFitmentTest(t *testing.T) *fitmentTestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	cfg := testConfig()

	car := testutil.SeedCarModel(t, db, "Test Coupe", 1.0)
	anchor := testutil.SeedAnchor(t, db, car.ID, "wheel_FL_anchor", "wheel")
	part := testutil.SeedPart(t, db, "Alloy Rim", "wheel")

	return &fitmentTestEnv{
		db:       db,
		fitments: NewFitmentService(repos.Fitment, repos.CarModel, repos.Part, nil, cfg),
		repos:    repos,
		car:      car,
		anchor:   anchor,
		part:     part,
	}
}

func validTransform() json.RawMessage {
	return json.RawMessage(`{"position":[0.1,0.2,0.3],"rotation_euler":[0,0,0],"scale":[1,1,1]}`)
}

func TestSaveFitmentCreatesVersionOne(t *testing.T) {
	env := setupFitmentTest(t)
	userID := int64(1)

	fitment, err := env.fitments.SaveFitment(context.Background(), SaveFitmentReq{
		CarModelID:        env.car.ID,
		PartID:            env.part.ID,
		AnchorID:          env.anchor.ID,
		TransformOverride: validTransform(),
	}, &userID)
	if err != nil {
		t.Fatalf("SaveFitment failed: %v", err)
	}
	if fitment.Version != 1 {
		t.Errorf("Expected version 1, got %d", fitment.Version)
	}
	if fitment.QualityScore != 0.5 {
		t.Errorf("Expected default quality 0.5, got %v", fitment.QualityScore)
	}
	if fitment.Scope != entity.ScopeUser {
		t.Errorf("Expected user scope default, got %s", fitment.Scope)
	}
	if fitment.CreatedByUserID == nil || *fitment.CreatedByUserID != userID {
		t.Errorf("Expected created_by_user_id %d, got %v", userID, fitment.CreatedByUserID)
	}
}

func TestSaveFitmentUpdateIncrementsVersion(t *testing.T) {
	env := setupFitmentTest(t)
	userID := int64(1)
	req := SaveFitmentReq{
		CarModelID:        env.car.ID,
		PartID:            env.part.ID,
		AnchorID:          env.anchor.ID,
		TransformOverride: validTransform(),
	}

	first, err := env.fitments.SaveFitment(context.Background(), req, &userID)
	if err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	req.TransformOverride = json.RawMessage(`{"position":[9,9,9],"rotation_euler":[0,0,0],"scale":[2,2,2]}`)
	second, err := env.fitments.SaveFitment(context.Background(), req, &userID)
	if err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected same record on natural key, got %s vs %s", second.ID, first.ID)
	}
	if second.Version != 2 {
		t.Errorf("Expected version 2 after update, got %d", second.Version)
	}
	// quality不随普通更新变动
	if second.QualityScore != 0.5 {
		t.Errorf("Expected quality unchanged at 0.5, got %v", second.QualityScore)
	}

	var count int64
	env.db.Model(&entity.Fitment{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly 1 fitment row, got %d", count)
	}
}

func TestSaveFitmentExplicitQualityUpdate(t *testing.T) {
	env := setupFitmentTest(t)
	userID := int64(1)
	req := SaveFitmentReq{
		CarModelID:        env.car.ID,
		PartID:            env.part.ID,
		AnchorID:          env.anchor.ID,
		TransformOverride: validTransform(),
	}
	if _, err := env.fitments.SaveFitment(context.Background(), req, &userID); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	quality := 0.95
	req.QualityScore = &quality
	updated, err := env.fitments.SaveFitment(context.Background(), req, &userID)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.QualityScore != 0.95 {
		t.Errorf("Expected explicit quality 0.95, got %v", updated.QualityScore)
	}
}

func TestSaveFitmentRejectsInvalidTransform(t *testing.T) {
	env := setupFitmentTest(t)
	userID := int64(1)

	cases := []json.RawMessage{
		json.RawMessage(`{"position":[0,0,0],"rotation_euler":[0,0,0]}`),      // 缺scale
		json.RawMessage(`{"position":[0,0],"rotation_euler":[0,0,0],"scale":[1,1,1]}`), // 非triple
		json.RawMessage(`"not an object"`),
		json.RawMessage(`{}`),
	}
	for _, raw := range cases {
		_, err := env.fitments.SaveFitment(context.Background(), SaveFitmentReq{
			CarModelID:        env.car.ID,
			PartID:            env.part.ID,
			AnchorID:          env.anchor.ID,
			TransformOverride: raw,
		}, &userID)
		if !errors.Is(err, ErrInvalidTransform) {
			t.Errorf("Expected ErrInvalidTransform for %s, got %v", raw, err)
		}
	}

	var count int64
	env.db.Model(&entity.Fitment{}).Count(&count)
	if count != 0 {
		t.Errorf("Bad payloads must not persist, found %d rows", count)
	}
}

func TestSaveFitmentRejectsForeignAnchor(t *testing.T) {
	env := setupFitmentTest(t)
	userID := int64(1)

	otherCar := testutil.SeedCarModel(t, env.db, "Other Car", 1.0)
	otherAnchor := testutil.SeedAnchor(t, env.db, otherCar.ID, "wheel_FL_anchor", "wheel")

	_, err := env.fitments.SaveFitment(context.Background(), SaveFitmentReq{
		CarModelID:        env.car.ID,
		PartID:            env.part.ID,
		AnchorID:          otherAnchor.ID,
		TransformOverride: validTransform(),
	}, &userID)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for anchor of another car, got %v", err)
	}
}

func TestSaveFitmentUserScopeRequiresUser(t *testing.T) {
	env := setupFitmentTest(t)

	_, err := env.fitments.SaveFitment(context.Background(), SaveFitmentReq{
		CarModelID:        env.car.ID,
		PartID:            env.part.ID,
		AnchorID:          env.anchor.ID,
		TransformOverride: validTransform(),
		Scope:             entity.ScopeUser,
	}, nil)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for anonymous user-scope save, got %v", err)
	}
}

func TestSaveFitmentScopesAreIndependent(t *testing.T) {
	env := setupFitmentTest(t)
	userID := int64(1)
	req := SaveFitmentReq{
		CarModelID:        env.car.ID,
		PartID:            env.part.ID,
		AnchorID:          env.anchor.ID,
		TransformOverride: validTransform(),
	}

	userFit, err := env.fitments.SaveFitment(context.Background(), req, &userID)
	if err != nil {
		t.Fatalf("User save failed: %v", err)
	}

	req.Scope = entity.ScopeGlobal
	globalFit, err := env.fitments.SaveFitment(context.Background(), req, &userID)
	if err != nil {
		t.Fatalf("Global save failed: %v", err)
	}

	if userFit.ID == globalFit.ID {
		t.Error("user and global scope must be distinct rows")
	}
	if globalFit.Version != 1 {
		t.Errorf("Global create expected version 1, got %d", globalFit.Version)
	}
}

func TestManualAdjustmentUsesTrustScore(t *testing.T) {
	env := setupFitmentTest(t)

	fitment, err := env.fitments.SaveManualAdjustment(context.Background(), ManualAdjustmentReq{
		CarModelID: env.car.ID,
		PartID:     env.part.ID,
		Transform:  validTransform(),
	}, 7)
	if err != nil {
		t.Fatalf("SaveManualAdjustment failed: %v", err)
	}
	if fitment.QualityScore != 0.8 {
		t.Errorf("Manual adjustment expected quality 0.8, got %v", fitment.QualityScore)
	}
	if fitment.Scope != entity.ScopeUser {
		t.Errorf("Manual adjustment expected user scope, got %s", fitment.Scope)
	}
	// anchor由part类别匹配
	if fitment.AnchorID != env.anchor.ID {
		t.Errorf("Expected anchor %d matched by category, got %d", env.anchor.ID, fitment.AnchorID)
	}
	if fitment.PartVariantHash == "" {
		t.Error("Manual adjustment must derive variant hash from part")
	}
}

func TestManualAdjustmentPrefersAttachTo(t *testing.T) {
	env := setupFitmentTest(t)

	namedAnchor := testutil.SeedAnchor(t, env.db, env.car.ID, "wheel_RR_anchor", "wheel")
	env.part.AttachTo = "wheel_RR_anchor"
	if err := env.repos.Part.Update(context.Background(), env.part); err != nil {
		t.Fatalf("Part update failed: %v", err)
	}

	fitment, err := env.fitments.SaveManualAdjustment(context.Background(), ManualAdjustmentReq{
		CarModelID: env.car.ID,
		PartID:     env.part.ID,
		Transform:  validTransform(),
	}, 7)
	if err != nil {
		t.Fatalf("SaveManualAdjustment failed: %v", err)
	}
	if fitment.AnchorID != namedAnchor.ID {
		t.Errorf("Expected attach_to anchor %d, got %d", namedAnchor.ID, fitment.AnchorID)
	}
}

func TestManualAdjustmentFallsBackToAnchorName(t *testing.T) {
	env := setupFitmentTest(t)

	// type未标注为wheel，仅锚点命名带部位词
	untypedCar := testutil.SeedCarModel(t, env.db, "Untyped Coupe", 1.0)
	namedAnchor := testutil.SeedAnchor(t, env.db, untypedCar.ID, "wheel_FL_anchor", "attachment")

	fitment, err := env.fitments.SaveManualAdjustment(context.Background(), ManualAdjustmentReq{
		CarModelID: untypedCar.ID,
		PartID:     env.part.ID,
		Transform:  validTransform(),
	}, 7)
	if err != nil {
		t.Fatalf("SaveManualAdjustment failed: %v", err)
	}
	if fitment.AnchorID != namedAnchor.ID {
		t.Errorf("Expected name-matched anchor %d, got %d", namedAnchor.ID, fitment.AnchorID)
	}
}

func TestManualAdjustmentNoMatchingAnchor(t *testing.T) {
	env := setupFitmentTest(t)

	bareCar := testutil.SeedCarModel(t, env.db, "Bare Coupe", 1.0)
	testutil.SeedAnchor(t, env.db, bareCar.ID, "roof_rail", "attachment")

	_, err := env.fitments.SaveManualAdjustment(context.Background(), ManualAdjustmentReq{
		CarModelID: bareCar.ID,
		PartID:     env.part.ID,
		Transform:  validTransform(),
	}, 7)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound when no anchor matches, got %v", err)
	}
}

func TestSaveFitmentRejectsOutOfRangeQuality(t *testing.T) {
	env := setupFitmentTest(t)
	userID := int64(1)

	for _, quality := range []float64{-0.1, 1.5} {
		q := quality
		_, err := env.fitments.SaveFitment(context.Background(), SaveFitmentReq{
			CarModelID:        env.car.ID,
			PartID:            env.part.ID,
			AnchorID:          env.anchor.ID,
			TransformOverride: validTransform(),
			QualityScore:      &q,
		}, &userID)
		if !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("Expected ErrInvalidQuality for %v, got %v", quality, err)
		}
	}

	var count int64
	env.db.Model(&entity.Fitment{}).Count(&count)
	if count != 0 {
		t.Errorf("Out-of-range quality must not persist, found %d rows", count)
	}
}

func TestConcurrentSaveConvergesToOneRow(t *testing.T) {
	env := setupFitmentTest(t)
	userID := int64(1)
	req := SaveFitmentReq{
		CarModelID:        env.car.ID,
		PartID:            env.part.ID,
		AnchorID:          env.anchor.ID,
		TransformOverride: validTransform(),
	}

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := env.fitments.SaveFitment(context.Background(), req, &userID)
			errs <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("Concurrent save failed: %v", err)
		}
	}

	// 落败方的create收敛为update: 恰好一行，version=2
	var fitments []entity.Fitment
	if err := env.db.Find(&fitments).Error; err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(fitments) != 1 {
		t.Fatalf("Expected exactly 1 row after concurrent saves, got %d", len(fitments))
	}
	if fitments[0].Version != 2 {
		t.Errorf("Expected version 2 after concurrent saves, got %d", fitments[0].Version)
	}
}

func TestDeleteFitmentAuthorization(t *testing.T) {
	env := setupFitmentTest(t)
	owner := int64(1)

	userFit, err := env.fitments.SaveFitment(context.Background(), SaveFitmentReq{
		CarModelID:        env.car.ID,
		PartID:            env.part.ID,
		AnchorID:          env.anchor.ID,
		TransformOverride: validTransform(),
	}, &owner)
	if err != nil {
		t.Fatalf("User save failed: %v", err)
	}

	// 非属主删除被拒
	if err := env.fitments.DeleteFitment(context.Background(), userFit.ID, 2, false); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for non-owner delete, got %v", err)
	}
	// 属主可删
	if err := env.fitments.DeleteFitment(context.Background(), userFit.ID, owner, false); err != nil {
		t.Errorf("Owner delete failed: %v", err)
	}

	globalFit, err := env.fitments.SaveFitment(context.Background(), SaveFitmentReq{
		CarModelID:        env.car.ID,
		PartID:            env.part.ID,
		AnchorID:          env.anchor.ID,
		TransformOverride: validTransform(),
		Scope:             entity.ScopeGlobal,
	}, &owner)
	if err != nil {
		t.Fatalf("Global save failed: %v", err)
	}

	// 共享scope需要curator
	if err := env.fitments.DeleteFitment(context.Background(), globalFit.ID, owner, false); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for non-curator global delete, got %v", err)
	}
	if err := env.fitments.DeleteFitment(context.Background(), globalFit.ID, owner, true); err != nil {
		t.Errorf("Curator delete failed: %v", err)
	}
}
