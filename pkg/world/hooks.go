package world

import (
	"github.com/gonewx/gridworld/pkg/camera"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/surface"
	"github.com/gonewx/gridworld/pkg/vec"
)

// InputKind 输入事件类型
type InputKind int

const (
	InputKey InputKind = iota
	InputPointerMove
	InputPointerDown
	InputPointerLeave
)

// Key 逻辑按键
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyZoomIn
	KeyZoomOut
	KeyAction
)

var keyNames = map[Key]string{
	KeyNone:    "none",
	KeyUp:      "up",
	KeyDown:    "down",
	KeyLeft:    "left",
	KeyRight:   "right",
	KeyZoomIn:  "zoom-in",
	KeyZoomOut: "zoom-out",
	KeyAction:  "action",
}

func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return "unknown"
}

// Direction 方向键对应的格子偏移，非方向键返回 false
func (k Key) Direction() (grid.Coord, bool) {
	switch k {
	case KeyUp:
		return grid.C(0, -1, 0), true
	case KeyDown:
		return grid.C(0, 1, 0), true
	case KeyLeft:
		return grid.C(-1, 0, 0), true
	case KeyRight:
		return grid.C(1, 0, 0), true
	}
	return grid.Coord{}, false
}

// InputEvent 宿主转换后的输入事件
type InputEvent struct {
	Kind    InputKind
	Key     Key
	Pointer vec.Vec2 // 指针屏幕坐标（仅指针事件）
}

// CellRenderInput 逐格绘制回调的参数
// 图层回调和实体的 onCellRender 钩子共用此结构
type CellRenderInput struct {
	Surface    surface.Surface
	WorldPos   grid.Coord
	ScreenPos  vec.Vec2 // 格子中心的屏幕坐标
	ScreenSize vec.Vec2
	// Cell 格子数据，坐标处没有格子时为 nil
	Cell         *CellData
	Camera       camera.Camera
	CellSize     float64
	HalfCellSize float64
}

// ScaledCellSize 返回格子在屏幕上的边长（已乘缩放）
func (in CellRenderInput) ScaledCellSize() float64 {
	return in.CellSize * in.Camera.EffectiveZoom()
}

// RenderCell 图层的逐格绘制回调
type RenderCell func(in CellRenderInput)

// Hooks 一个实体注册的钩子
// 实体只在 Setup 期间注册钩子，同类钩子按注册顺序调用。
type Hooks struct {
	input      []func(InputEvent)
	cellRender []func(CellRenderInput)
	destroy    []func()
}

// OnInput 注册输入钩子
func (h *Hooks) OnInput(fn func(InputEvent)) {
	h.input = append(h.input, fn)
}

// OnCellRender 注册格子渲染钩子，实体所在的格子可见时每帧调用
func (h *Hooks) OnCellRender(fn func(CellRenderInput)) {
	h.cellRender = append(h.cellRender, fn)
}

// OnDestroy 注册销毁钩子
func (h *Hooks) OnDestroy(fn func()) {
	h.destroy = append(h.destroy, fn)
}

// Count 返回已注册钩子数量
func (h *Hooks) Count() (input, cellRender, destroy int) {
	return len(h.input), len(h.cellRender), len(h.destroy)
}
