package placement

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func wheelAnchor(expectedDiameter float64) *AnchorSeed {
	return &AnchorSeed{
		Transform: Transform{
			Position:      [3]float64{1.2, 0.3, -0.8},
			RotationEuler: [3]float64{0, 0, 0},
			Scale:         [3]float64{1, 1, 1},
		},
		Category:         "wheel",
		ExpectedDiameter: expectedDiameter,
	}
}

// TestWheelDiameterScaling pins the wheel scale math:
// (expected_diameter / 2r) * wheel base factor, uniform on all axes.
func TestWheelDiameterScaling(t *testing.T) {
	part := &PartSpec{
		Category:      "wheel",
		Type:          "wheels",
		IntrinsicSize: `{"radius": 0.34}`,
	}
	car := &CarSpec{UnitScale: 1.0}

	got := ComputeAutoPlacement(wheelAnchor(0.8), part, car)

	want := (0.8 / 0.68) * 0.6
	for i, s := range got.Scale {
		if !approxEqual(s, want) {
			t.Fatalf("scale[%d] = %v, want %v", i, s, want)
		}
	}
	if got.Position != [3]float64{1.2, 0.3, -0.8} {
		t.Fatalf("position changed unexpectedly: %v", got.Position)
	}
}

// TestWheelWithoutDiameterOnlyBaseScale 无expected_diameter时只乘基础系数
func TestWheelWithoutDiameterOnlyBaseScale(t *testing.T) {
	part := &PartSpec{Category: "wheel", IntrinsicSize: `{"radius": 0.34}`}
	got := ComputeAutoPlacement(wheelAnchor(0), part, &CarSpec{UnitScale: 1.0})
	for i, s := range got.Scale {
		if !approxEqual(s, 0.6) {
			t.Fatalf("scale[%d] = %v, want 0.6", i, s)
		}
	}
}

func TestCategoryScaleFactors(t *testing.T) {
	cases := []struct {
		category string
		want     float64
	}{
		{"headlight", 0.6},
		{"spoiler", 1.0},
		{"exhaust", 0.8},
		{"roof-rack", 1.0}, // unrecognized: untouched
	}
	anchor := &AnchorSeed{Transform: Identity()}
	car := &CarSpec{UnitScale: 1.0}
	for _, tc := range cases {
		got := ComputeAutoPlacement(anchor, &PartSpec{Category: tc.category}, car)
		if !approxEqual(got.Scale[0], tc.want) {
			t.Fatalf("%s: scale = %v, want %v", tc.category, got.Scale[0], tc.want)
		}
	}
}

// TestBottomCenterPivotUsesScaledHeight pivot修正必须使用已缩放后的scale
func TestBottomCenterPivotUsesScaledHeight(t *testing.T) {
	anchor := &AnchorSeed{
		Transform: Transform{
			Position: [3]float64{0, 1.0, 0},
			Scale:    [3]float64{1, 1, 1},
		},
	}
	part := &PartSpec{
		Category:      "headlight",
		PivotHint:     "bottom-center",
		IntrinsicSize: `{"height": 0.2}`,
	}
	got := ComputeAutoPlacement(anchor, part, &CarSpec{UnitScale: 1.0})

	// height 0.2 * scaled y (1*0.6) / 2 = 0.06
	want := 1.0 - 0.2*0.6/2
	if !approxEqual(got.Position[1], want) {
		t.Fatalf("position y = %v, want %v", got.Position[1], want)
	}
}

func TestHubCenterPivotShiftsUp(t *testing.T) {
	part := &PartSpec{
		Category:      "wheel",
		PivotHint:     "hub-center",
		IntrinsicSize: `{"radius": 0.34}`,
	}
	got := ComputeAutoPlacement(wheelAnchor(0.8), part, &CarSpec{UnitScale: 1.0})

	scaleY := (0.8 / 0.68) * 0.6
	want := 0.3 + 0.34*scaleY
	if !approxEqual(got.Position[1], want) {
		t.Fatalf("position y = %v, want %v", got.Position[1], want)
	}
}

// TestUnitScaleAppliedLast unit_scale必须在pivot修正之后统一作用于scale
func TestUnitScaleAppliedLast(t *testing.T) {
	anchor := &AnchorSeed{
		Transform: Transform{Position: [3]float64{0, 1, 0}, Scale: [3]float64{1, 1, 1}},
	}
	part := &PartSpec{
		Category:      "spoiler",
		PivotHint:     "bottom-center",
		IntrinsicSize: `{"height": 0.3}`,
	}
	got := ComputeAutoPlacement(anchor, part, &CarSpec{UnitScale: 0.01})

	// pivot shift uses pre-normalization scale (1.0), then scale is normalized
	if !approxEqual(got.Position[1], 1-0.3/2) {
		t.Fatalf("position y = %v, want %v", got.Position[1], 1-0.3/2)
	}
	if !approxEqual(got.Scale[1], 0.01) {
		t.Fatalf("scale y = %v, want 0.01", got.Scale[1])
	}
}

func TestMalformedIntrinsicSizeFallsBackToCategoryDefault(t *testing.T) {
	part := &PartSpec{Category: "wheel", IntrinsicSize: `{"radius": not-json`}
	got := ComputeAutoPlacement(wheelAnchor(0.8), part, &CarSpec{UnitScale: 1.0})

	// default wheel radius 0.34 applies
	want := (0.8 / 0.68) * 0.6
	if !approxEqual(got.Scale[0], want) {
		t.Fatalf("scale = %v, want %v", got.Scale[0], want)
	}
}

func TestMissingInputsYieldIdentity(t *testing.T) {
	id := Identity()
	if got := ComputeAutoPlacement(nil, &PartSpec{}, &CarSpec{UnitScale: 1}); got != id {
		t.Fatalf("nil anchor: got %+v", got)
	}
	if got := ComputeAutoPlacement(&AnchorSeed{Transform: Identity()}, nil, &CarSpec{UnitScale: 1}); got != id {
		t.Fatalf("nil part: got %+v", got)
	}
	if got := ComputeAutoPlacement(&AnchorSeed{Transform: Identity()}, &PartSpec{}, nil); got != id {
		t.Fatalf("nil car: got %+v", got)
	}
}

// TestIdempotence 相同输入两次调用必须逐位相同
func TestIdempotence(t *testing.T) {
	anchor := wheelAnchor(0.72)
	part := &PartSpec{
		Category:      "wheel",
		PivotHint:     "hub-center",
		IntrinsicSize: `{"radius": 0.31, "width": 0.22}`,
	}
	car := &CarSpec{UnitScale: 0.0254}

	first := ComputeAutoPlacement(anchor, part, car)
	second := ComputeAutoPlacement(anchor, part, car)
	if first != second {
		t.Fatalf("not idempotent: %+v vs %+v", first, second)
	}
}
