package placement

import (
	"encoding/json"
	"strings"
)

// IntrinsicSize 部件几何尺寸描述 (单位:米)。字段为指针以区分缺省。
type IntrinsicSize struct {
	Radius *float64 `json:"radius,omitempty"`
	Length *float64 `json:"length,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

func f(v float64) *float64 { return &v }

// categorySizeDefaults 各类别的默认尺寸，descriptor缺失/解析失败时兜底。
// 有序切片保证匹配结果确定。
var categorySizeDefaults = []struct {
	key  string
	size IntrinsicSize
}{
	{"wheel", IntrinsicSize{Radius: f(0.34), Width: f(0.2), Height: f(0.68)}},
	{"headlight", IntrinsicSize{Length: f(0.3), Width: f(0.2), Height: f(0.1)}},
	{"spoiler", IntrinsicSize{Length: f(1.5), Width: f(0.5), Height: f(0.3)}},
	{"exhaust", IntrinsicSize{Length: f(0.8), Width: f(0.3), Height: f(0.3)}},
}

// fallbackSize 未识别类别的立方体默认
var fallbackSize = IntrinsicSize{Length: f(0.5), Width: f(0.5), Height: f(0.5)}

// ResolveIntrinsicSize 解析部件尺寸descriptor；解析失败或为空时按类别兜底。
// parse-or-default是显式规则：格式错误不吞掉，而是落到已定义的默认值。
func ResolveIntrinsicSize(raw, category, partType string) IntrinsicSize {
	if raw != "" {
		var size IntrinsicSize
		if err := json.Unmarshal([]byte(raw), &size); err == nil {
			if size.Radius != nil || size.Length != nil || size.Width != nil || size.Height != nil {
				return size
			}
		}
	}
	return defaultSizeFor(category, partType)
}

func defaultSizeFor(category, partType string) IntrinsicSize {
	cat := strings.ToLower(category)
	typ := strings.ToLower(partType)
	for _, entry := range categorySizeDefaults {
		if strings.Contains(cat, entry.key) || strings.Contains(typ, entry.key) {
			return entry.size
		}
	}
	return fallbackSize
}
