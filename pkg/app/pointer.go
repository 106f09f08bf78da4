package app

import (
	"github.com/gonewx/gridworld/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerState 当前帧的指针状态，统一鼠标和触摸
type PointerState struct {
	X, Y int
	// Present 指针是否存在：有活动触摸，或桌面端的鼠标
	Present bool
	// JustPressed 本帧刚按下鼠标左键或开始触摸
	JustPressed bool
	Touch       bool
}

// ReadPointer 读取本帧的指针状态，优先检测触摸
// 移动端没有触摸时指针不存在。
func ReadPointer() PointerState {
	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return PointerState{X: x, Y: y, Present: true, JustPressed: true, Touch: true}
	}
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return PointerState{X: x, Y: y, Present: true, Touch: true}
	}
	if utils.IsMobile() {
		return PointerState{}
	}

	x, y := ebiten.CursorPosition()
	return PointerState{
		X:           x,
		Y:           y,
		Present:     true,
		JustPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
	}
}

// Inside 指针是否存在且位于 w x h 的屏幕内
func (p PointerState) Inside(w, h int) bool {
	return p.Present && p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h
}
