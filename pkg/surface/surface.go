// Package surface 定义核心渲染逻辑所依赖的抽象 2D 绘图表面
//
// 核心只需要以下原语：填充矩形、描边矩形、保存/恢复绘制状态、
// 填充/描边样式、线宽以及可查询的像素尺寸。具体后端（ebiten、终端）
// 在子包中以适配器的形式实现，核心包从不直接依赖任何后端。
//
// 样式使用 CSS 风格的十六进制颜色字符串（如 "#00d000"），与 Canvas 2D 一致。
package surface

import "github.com/gonewx/gridworld/pkg/vec"

// Surface 抽象绘图表面
type Surface interface {
	// Size 返回表面的像素尺寸
	Size() vec.Vec2

	// Save 压入当前绘制状态
	Save()
	// Restore 弹出并恢复最近一次保存的绘制状态
	Restore()

	SetFillStyle(style string)
	SetStrokeStyle(style string)
	SetLineWidth(width float64)

	// FillRect 使用当前填充样式填充矩形
	FillRect(x, y, w, h float64)
	// StrokeRect 使用当前描边样式和线宽描边矩形
	StrokeRect(x, y, w, h float64)
}

// Paint 一组绘制状态
type Paint struct {
	Fill      string
	Stroke    string
	LineWidth float64
}

// DefaultPaint 与 Canvas 2D 的初始状态一致：黑色填充、黑色描边、线宽 1
func DefaultPaint() Paint {
	return Paint{Fill: "#000000", Stroke: "#000000", LineWidth: 1}
}

// PaintStack 为适配器实现 Save/Restore 语义
type PaintStack struct {
	Current Paint
	saved   []Paint
}

// NewPaintStack 创建初始状态为 DefaultPaint 的状态栈
func NewPaintStack() *PaintStack {
	return &PaintStack{Current: DefaultPaint()}
}

// Save 保存当前状态
func (p *PaintStack) Save() {
	p.saved = append(p.saved, p.Current)
}

// Restore 恢复最近保存的状态；栈为空时不做任何事（与 Canvas 行为一致）
func (p *PaintStack) Restore() {
	if len(p.saved) == 0 {
		return
	}
	p.Current = p.saved[len(p.saved)-1]
	p.saved = p.saved[:len(p.saved)-1]
}

// Depth 返回已保存状态的数量
func (p *PaintStack) Depth() int {
	return len(p.saved)
}
