// Package vec 提供屏幕空间与世界空间使用的浮点向量类型
package vec

import "math"

// Vec2 二维浮点向量，用于屏幕坐标与画布尺寸（像素）
type Vec2 struct {
	X, Y float64
}

// NewVec2 创建一个 Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add 返回 v + o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub 返回 v - o
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale 返回 v * s
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Vec3 三维浮点向量
// 主要用于屏幕坐标反算出的、尚未取整的世界坐标
type Vec3 struct {
	X, Y, Z float64
}

// Rounded 对三个分量分别四舍五入（.5 向正无穷取整）
func (v Vec3) Rounded() (x, y, z int) {
	return roundHalfUp(v.X), roundHalfUp(v.Y), roundHalfUp(v.Z)
}

func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}
