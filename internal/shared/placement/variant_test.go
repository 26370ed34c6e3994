package placement

import (
	"encoding/hex"
	"testing"
)

func TestVariantHashDeterministic(t *testing.T) {
	a := VariantHash("models/wheel_a.glb", `{"radius":0.34}`, "gloss-black")
	b := VariantHash("models/wheel_a.glb", `{"radius":0.34}`, "gloss-black")
	if a != b {
		t.Fatalf("same inputs produced different hashes: %s vs %s", a, b)
	}
	if _, err := hex.DecodeString(a); err != nil || len(a) != 64 {
		t.Fatalf("expected 64-char hex sha256, got %q", a)
	}
}

// TestVariantHashSensitivity 任一输入变化都必须改变hash
func TestVariantHashSensitivity(t *testing.T) {
	base := VariantHash("models/wheel_a.glb", `{"radius":0.34}`, "gloss-black")
	variants := []string{
		VariantHash("models/wheel_b.glb", `{"radius":0.34}`, "gloss-black"),
		VariantHash("models/wheel_a.glb", `{"radius":0.35}`, "gloss-black"),
		VariantHash("models/wheel_a.glb", `{"radius":0.34}`, "matte-black"),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collided with base hash", i)
		}
	}
}

func TestParseTransformRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"{",
		`{"position":[0,0,0]}`,
		`{"position":[0,0,0],"rotation_euler":[0,0,0]}`,
		`{"position":"zero","rotation_euler":[0,0,0],"scale":[1,1,1]}`,
	}
	for _, raw := range cases {
		if _, ok := ParseTransform(raw); ok {
			t.Fatalf("expected parse failure for %q", raw)
		}
	}
}

func TestParseTransformRoundTrip(t *testing.T) {
	in := Transform{
		Position:      [3]float64{1.5, -0.2, 3},
		RotationEuler: [3]float64{0, 1.5708, 0},
		Scale:         [3]float64{0.7, 0.7, 0.7},
	}
	out, ok := ParseTransform(in.Encode())
	if !ok {
		t.Fatal("round trip parse failed")
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}
