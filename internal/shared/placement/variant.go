package placement

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// VariantHash 派生部件几何/材质组合的稳定标识。
// 三个输入任一变化（尤其是glb资源替换）都会产生不同hash，
// 使旧的fitment覆盖自然失效而不是静默复用。
func VariantHash(glbRef, intrinsicSize, materialVariant string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s", glbRef, intrinsicSize, materialVariant)))
	return hex.EncodeToString(sum[:])
}
