package placement

import (
	"encoding/json"
	"math"
)

// Transform 3D放置变换 (position / euler rotation / scale)
type Transform struct {
	Position      [3]float64 `json:"position"`
	RotationEuler [3]float64 `json:"rotation_euler"`
	Scale         [3]float64 `json:"scale"`
}

// Identity 返回单位变换
func Identity() Transform {
	return Transform{
		Position:      [3]float64{0, 0, 0},
		RotationEuler: [3]float64{0, 0, 0},
		Scale:         [3]float64{1, 1, 1},
	}
}

// Valid 校验三组分量均为有限数值
func (t Transform) Valid() bool {
	for _, triple := range [][3]float64{t.Position, t.RotationEuler, t.Scale} {
		for _, v := range triple {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// ParseTransform 解析JSON变换。格式错误或分量缺失时返回(zero, false)。
func ParseTransform(raw string) (Transform, bool) {
	if raw == "" {
		return Transform{}, false
	}
	var payload struct {
		Position      *[3]float64 `json:"position"`
		RotationEuler *[3]float64 `json:"rotation_euler"`
		Scale         *[3]float64 `json:"scale"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Transform{}, false
	}
	if payload.Position == nil || payload.RotationEuler == nil || payload.Scale == nil {
		return Transform{}, false
	}
	t := Transform{
		Position:      *payload.Position,
		RotationEuler: *payload.RotationEuler,
		Scale:         *payload.Scale,
	}
	if !t.Valid() {
		return Transform{}, false
	}
	return t, true
}

// Encode 序列化为存储格式的JSON
func (t Transform) Encode() string {
	data, _ := json.Marshal(t)
	return string(data)
}
