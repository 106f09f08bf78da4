package grid

import (
	"fmt"
	"math"

	"github.com/gonewx/gridworld/pkg/vec"
)

// Coord 网格坐标（整数三元组）
// X/Y 为平面坐标，Z 为层/深度索引。按分量比较相等。
type Coord struct {
	X, Y, Z int
}

// C 是 Coord 的简写构造函数
func C(x, y, z int) Coord {
	return Coord{X: x, Y: y, Z: z}
}

// Add 返回 c + o
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// String 实现 fmt.Stringer
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// RoundVec3 将浮点世界坐标四舍五入到最近的格子
func RoundVec3(v vec.Vec3) Coord {
	x, y, z := v.Rounded()
	return Coord{X: x, Y: y, Z: z}
}

// Rect 世界空间中的轴对齐矩形（平面坐标），附带目标深度 Z
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
	Z          int
}

// Span 返回完整覆盖该矩形的格子范围（闭区间）
//
// from 取 Min 的向下取整，to 取 Max 的向上取整，
// 因此边缘的半个格子也会被包含进来，不会出现缺口。
func (r Rect) Span() (from, to Coord) {
	minX, maxX := r.MinX, r.MaxX
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	minY, maxY := r.MinY, r.MaxY
	if maxY < minY {
		minY, maxY = maxY, minY
	}

	from = Coord{X: int(math.Floor(minX)), Y: int(math.Floor(minY)), Z: r.Z}
	to = Coord{X: int(math.Ceil(maxX)), Y: int(math.Ceil(maxY)), Z: r.Z}
	return from, to
}
