// Package camera 提供世界坐标与屏幕坐标之间的换算
//
// # 坐标系统
//
//   - 世界坐标：格子中心位于整数坐标上，格子 (x, y) 覆盖 [x-0.5, x+0.5] × [y-0.5, y+0.5]
//   - 屏幕坐标：相对于画布左上角的像素坐标
//   - 摄像机位于屏幕中心
//
// # 核心转换公式
//
//	screen = screenSize/2 + (world - camera) * cellSize * zoom
//	world  = camera + (screen - screenSize/2) / (cellSize * zoom)
//
// 所有函数都是纯函数，world → screen → world 在取整后可以还原出原来的格子。
package camera

import (
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/vec"
)

// Camera 摄像机状态
type Camera struct {
	// X/Y 摄像机中心的世界坐标（可以是小数，用于平滑跟随）
	X, Y float64
	// Z 当前观察的深度层
	Z int
	// Zoom 缩放倍数，1.0 表示一个格子 = cellSize 像素
	Zoom float64
}

// Default 返回位于原点、无缩放的摄像机
func Default() Camera {
	return Camera{Zoom: 1}
}

// EffectiveZoom 返回实际使用的缩放倍数，非正数按 1 处理
func (c Camera) EffectiveZoom() float64 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}

// scale 返回一个世界单位对应的像素数
func scale(cam Camera, cellSize float64) float64 {
	return cellSize * cam.EffectiveZoom()
}

// WorldToScreen 计算格子中心在屏幕上的位置
func WorldToScreen(screenSize vec.Vec2, cam Camera, worldPos grid.Coord, cellSize float64) vec.Vec2 {
	s := scale(cam, cellSize)
	return vec.Vec2{
		X: screenSize.X/2 + (float64(worldPos.X)-cam.X)*s,
		Y: screenSize.Y/2 + (float64(worldPos.Y)-cam.Y)*s,
	}
}

// ScreenToWorld 将屏幕坐标反算为（未取整的）世界坐标
// Z 分量取摄像机当前深度
func ScreenToWorld(screenSize vec.Vec2, cam Camera, screenPos vec.Vec2, cellSize float64) vec.Vec3 {
	s := scale(cam, cellSize)
	return vec.Vec3{
		X: cam.X + (screenPos.X-screenSize.X/2)/s,
		Y: cam.Y + (screenPos.Y-screenSize.Y/2)/s,
		Z: float64(cam.Z),
	}
}

// VisibleWorldRect 返回画布覆盖的世界矩形
// 矩形边界取到屏幕边缘所在格子的中心坐标系位置，由 grid.Rect.Span 负责整数对齐
func VisibleWorldRect(screenSize vec.Vec2, cam Camera, cellSize float64) grid.Rect {
	s := scale(cam, cellSize)
	halfW := screenSize.X / 2 / s
	halfH := screenSize.Y / 2 / s
	return grid.Rect{
		MinX: cam.X - halfW,
		MinY: cam.Y - halfH,
		MaxX: cam.X + halfW,
		MaxY: cam.Y + halfH,
		Z:    cam.Z,
	}
}

// ClampZoom 将缩放限制在 [min, max] 范围内
func ClampZoom(zoom, min, max float64) float64 {
	if zoom < min {
		return min
	}
	if zoom > max {
		return max
	}
	return zoom
}

// Follow 让摄像机以 factor (0~1) 的比例向目标格子靠近，返回新的摄像机
// factor >= 1 时直接对准目标
func Follow(cam Camera, target grid.Coord, factor float64) Camera {
	if factor >= 1 {
		cam.X = float64(target.X)
		cam.Y = float64(target.Y)
	} else if factor > 0 {
		cam.X += (float64(target.X) - cam.X) * factor
		cam.Y += (float64(target.Y) - cam.Y) * factor
	}
	cam.Z = target.Z
	return cam
}
