package placement

import "strings"

// 类别缩放系数
const (
	wheelBaseScale     = 0.6
	headlightBaseScale = 0.6
	spoilerBaseScale   = 1.0
	exhaustBaseScale   = 0.8
)

// AnchorSeed 锚点输入：种子变换 + 类别 + 轮毂期望直径
type AnchorSeed struct {
	Transform        Transform
	Category         string
	ExpectedDiameter float64 // 0表示未知
	Metadata         string  // 原始JSON (radius/symmetry axis等扩展)
}

// PartSpec 部件输入
type PartSpec struct {
	Category      string
	Type          string
	PivotHint     string
	IntrinsicSize string // 原始JSON descriptor
}

// CarSpec 车型输入
type CarSpec struct {
	UnitScale float64
}

// ComputeAutoPlacement 纯函数计算默认放置变换。
// 顺序不可变：类别缩放 → pivot修正 → unit_scale归一化。
// pivot修正必须基于已按类别缩放后的scale，unit_scale必须最后统一作用。
// 任一输入缺失时退化为单位变换，绝不报错。
func ComputeAutoPlacement(anchor *AnchorSeed, part *PartSpec, car *CarSpec) Transform {
	if anchor == nil || part == nil || car == nil {
		return Identity()
	}

	t := anchor.Transform
	size := ResolveIntrinsicSize(part.IntrinsicSize, part.Category, part.Type)

	t = applyCategoryScale(t, part, anchor, size)
	t = applyPivotShift(t, part, size)

	if car.UnitScale != 1.0 {
		for i := range t.Scale {
			t.Scale[i] *= car.UnitScale
		}
	}

	return t
}

func applyCategoryScale(t Transform, part *PartSpec, anchor *AnchorSeed, size IntrinsicSize) Transform {
	switch {
	case matchesCategory(part, "wheel"):
		if anchor.ExpectedDiameter > 0 && size.Radius != nil && *size.Radius > 0 {
			factor := anchor.ExpectedDiameter / (2 * *size.Radius)
			for i := range t.Scale {
				t.Scale[i] *= factor
			}
		}
		for i := range t.Scale {
			t.Scale[i] *= wheelBaseScale
		}
	case matchesCategory(part, "headlight"):
		for i := range t.Scale {
			t.Scale[i] *= headlightBaseScale
		}
	case matchesCategory(part, "spoiler"):
		for i := range t.Scale {
			t.Scale[i] *= spoilerBaseScale
		}
	case matchesCategory(part, "exhaust"):
		for i := range t.Scale {
			t.Scale[i] *= exhaustBaseScale
		}
	}
	return t
}

func applyPivotShift(t Transform, part *PartSpec, size IntrinsicSize) Transform {
	switch part.PivotHint {
	case "bottom-center":
		if size.Height != nil {
			t.Position[1] -= *size.Height * t.Scale[1] / 2
		}
	case "hub-center":
		if size.Radius != nil {
			t.Position[1] += *size.Radius * t.Scale[1]
		}
	}
	return t
}

func matchesCategory(part *PartSpec, key string) bool {
	return strings.Contains(strings.ToLower(part.Category), key) ||
		strings.Contains(strings.ToLower(part.Type), key)
}
