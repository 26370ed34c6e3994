package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dldldl232/3d-car-customizer/internal/config"
	"github.com/dldldl232/3d-car-customizer/internal/garage/entity"
	"github.com/dldldl232/3d-car-customizer/internal/garage/repository"
	"github.com/dldldl232/3d-car-customizer/internal/garage/service"
	"github.com/dldldl232/3d-car-customizer/internal/garage/testutil"
)

func setupFitmentHandlerTest(t *testing.T) (*testutil.TestEnv, *entity.CarModel, *entity.Anchor, *entity.Part) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	cfg := &config.Config{
		Placement: config.PlacementConfig{
			DefaultQualityScore: 0.5,
			ManualQualityScore:  0.8,
		},
	}
	repos := repository.NewRepositories(db)
	fitmentSvc := service.NewFitmentService(repos.Fitment, repos.CarModel, repos.Part, nil, cfg)
	resolutionSvc := service.NewResolutionService(repos.Fitment, repos.CarModel, repos.Part, nil, cfg)
	h := NewFitmentHandler(fitmentSvc, resolutionSvc)

	public := testutil.OptionalAuthGroup(router, "/api/v1")
	public.GET("/fitments/resolve", h.Resolve)
	public.GET("/fitments", h.List)

	authorized := testutil.AuthGroup(router, "/api/v1")
	authorized.POST("/fitments", h.Save)
	authorized.POST("/fitments/manual-adjustment", h.SaveManualAdjustment)
	authorized.DELETE("/fitments/:id", h.Delete)

	car := testutil.SeedCarModel(t, db, "Handler Car", 1.0)
	anchor := testutil.SeedAnchor(t, db, car.ID, "spoiler_anchor", "spoiler")
	part := testutil.SeedPart(t, db, "GT Wing", "spoiler")

	return &testutil.TestEnv{DB: db, Router: router, T: t}, car, anchor, part
}

func transformBody() map[string]interface{} {
	return map[string]interface{}{
		"position":       []float64{0.5, 1.0, -2.0},
		"rotation_euler": []float64{0, 0, 0},
		"scale":          []float64{1, 1, 1},
	}
}

func TestResolveAnonymous(t *testing.T) {
	env, car, anchor, part := setupFitmentHandlerTest(t)

	path := fmt.Sprintf("/api/v1/fitments/resolve?car_model_id=%d&part_id=%d&anchor_id=%d", car.ID, part.ID, anchor.ID)
	w := testutil.DoRequest(env.Router, "GET", path, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for anonymous resolve, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["source"] != "auto" {
		t.Errorf("Expected auto source without overrides, got %v", data["source"])
	}
	if _, ok := data["transform"]; !ok {
		t.Error("Resolve response must carry a transform")
	}
}

func TestResolveRequiresKey(t *testing.T) {
	env, _, _, _ := setupFitmentHandlerTest(t)

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/fitments/resolve?car_model_id=1", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for incomplete key, got %d", w.Code)
	}
}

func TestSaveFitmentRequiresAuth(t *testing.T) {
	env, car, anchor, part := setupFitmentHandlerTest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/fitments", map[string]interface{}{
		"car_model_id":       car.ID,
		"part_id":            part.ID,
		"anchor_id":          anchor.ID,
		"transform_override": transformBody(),
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}

func TestSaveAndResolveRoundTrip(t *testing.T) {
	env, car, anchor, part := setupFitmentHandlerTest(t)
	token := testutil.GenerateTestToken(42, "Tester", "tester@example.com", false)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/fitments", map[string]interface{}{
		"car_model_id":       car.ID,
		"part_id":            part.ID,
		"anchor_id":          anchor.ID,
		"transform_override": transformBody(),
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on create, got %d: %s", w.Code, w.Body.String())
	}

	path := fmt.Sprintf("/api/v1/fitments/resolve?car_model_id=%d&part_id=%d&anchor_id=%d", car.ID, part.ID, anchor.ID)
	w2 := testutil.DoRequest(env.Router, "GET", path, nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w2.Code)
	}
	resp := testutil.ParseResponse(w2)
	data := resp["data"].(map[string]interface{})
	if data["source"] != "user" {
		t.Errorf("Expected user source after save, got %v", data["source"])
	}

	// 第二次保存同键走更新，返回200
	w3 := testutil.DoRequest(env.Router, "POST", "/api/v1/fitments", map[string]interface{}{
		"car_model_id":       car.ID,
		"part_id":            part.ID,
		"anchor_id":          anchor.ID,
		"transform_override": transformBody(),
	}, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("Expected 200 on upsert-update, got %d: %s", w3.Code, w3.Body.String())
	}
	resp3 := testutil.ParseResponse(w3)
	data3 := resp3["data"].(map[string]interface{})
	if data3["version"].(float64) != 2 {
		t.Errorf("Expected version 2 after second save, got %v", data3["version"])
	}
}

func TestGlobalScopeRequiresCurator(t *testing.T) {
	env, car, anchor, part := setupFitmentHandlerTest(t)

	body := map[string]interface{}{
		"car_model_id":       car.ID,
		"part_id":            part.ID,
		"anchor_id":          anchor.ID,
		"transform_override": transformBody(),
		"scope":              "global",
	}

	plain := testutil.GenerateTestToken(42, "Tester", "tester@example.com", false)
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/fitments", body, plain)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-curator global save, got %d", w.Code)
	}

	curator := testutil.GenerateTestToken(43, "Curator", "curator@example.com", true)
	w2 := testutil.DoRequest(env.Router, "POST", "/api/v1/fitments", body, curator)
	if w2.Code != http.StatusCreated {
		t.Errorf("Expected 201 for curator global save, got %d: %s", w2.Code, w2.Body.String())
	}
}

func TestInvalidTransformRejected(t *testing.T) {
	env, car, anchor, part := setupFitmentHandlerTest(t)
	token := testutil.GenerateTestToken(42, "Tester", "tester@example.com", false)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/fitments", map[string]interface{}{
		"car_model_id": car.ID,
		"part_id":      part.ID,
		"anchor_id":    anchor.ID,
		"transform_override": map[string]interface{}{
			"position": []float64{0, 0, 0},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid transform, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteFitmentOwnership(t *testing.T) {
	env, car, anchor, part := setupFitmentHandlerTest(t)
	owner := testutil.GenerateTestToken(42, "Owner", "owner@example.com", false)
	stranger := testutil.GenerateTestToken(99, "Stranger", "stranger@example.com", false)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/fitments", map[string]interface{}{
		"car_model_id":       car.ID,
		"part_id":            part.ID,
		"anchor_id":          anchor.ID,
		"transform_override": transformBody(),
	}, owner)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create failed: %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := data["id"].(string)

	w2 := testutil.DoRequest(env.Router, "DELETE", "/api/v1/fitments/"+id, nil, stranger)
	if w2.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for stranger delete, got %d", w2.Code)
	}

	w3 := testutil.DoRequest(env.Router, "DELETE", "/api/v1/fitments/"+id, nil, owner)
	if w3.Code != http.StatusOK {
		t.Errorf("Expected 200 for owner delete, got %d: %s", w3.Code, w3.Body.String())
	}
}
