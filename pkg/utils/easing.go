// Package utils 提供宿主共用的小工具：缓动函数和平台检测
package utils

import "math"

// Easing 缓动函数
//
// 接受进度 t ∈ [0, 1]，返回缓动后的进度 ∈ [0, 1]。
// 玩家在两个格子之间行走时用它把行动进度映射为位移比例。
//
// 参考：https://easings.net/
type Easing func(t float64) float64

// EaseLinear 线性缓动（匀速）
func EaseLinear(t float64) float64 {
	return t
}

// EaseOutCubic 三次方缓出：开始快，结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseInOutCubic 三次方缓入缓出
//
//	t < 0.5: f(t) = 4t³
//	t >= 0.5: f(t) = 1 - (-2t + 2)³ / 2
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// EaseOutQuad 二次方缓出，比 Cubic 更柔和
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

var easings = map[string]Easing{
	"":             EaseLinear,
	"linear":       EaseLinear,
	"out-cubic":    EaseOutCubic,
	"in-out-cubic": EaseInOutCubic,
	"out-quad":     EaseOutQuad,
}

// ParseEasing 按配置中的名字查找缓动函数，空字符串表示线性
func ParseEasing(name string) (Easing, bool) {
	e, ok := easings[name]
	return e, ok
}

// Apply 先把 t 限制到 [0, 1] 再缓动，nil 视为线性
func (e Easing) Apply(t float64) float64 {
	t = min(max(t, 0), 1)
	if e == nil {
		return t
	}
	return e(t)
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
