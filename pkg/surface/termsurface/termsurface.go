// Package termsurface 把 tcell.Screen 适配为 surface.Surface
//
// 一个终端字符格对应一个"像素"：FillRect 以背景色填充空格，
// StrokeRect 以前景色绘制制表符边框。坐标按格向外取整后裁剪到屏幕范围内。
package termsurface

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/gonewx/gridworld/pkg/surface"
	"github.com/gonewx/gridworld/pkg/vec"
)

// Surface 在 tcell 屏幕上绘制
type Surface struct {
	screen  tcell.Screen
	paint   *surface.PaintStack
	palette *surface.Palette
}

// New 创建终端适配器
func New(screen tcell.Screen) *Surface {
	return &Surface{
		screen:  screen,
		paint:   surface.NewPaintStack(),
		palette: surface.NewPalette(color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}),
	}
}

// Palette 返回颜色缓存
func (s *Surface) Palette() *surface.Palette {
	return s.palette
}

func (s *Surface) Size() vec.Vec2 {
	w, h := s.screen.Size()
	return vec.Vec2{X: float64(w), Y: float64(h)}
}

func (s *Surface) Save()    { s.paint.Save() }
func (s *Surface) Restore() { s.paint.Restore() }

func (s *Surface) SetFillStyle(style string)   { s.paint.Current.Fill = style }
func (s *Surface) SetStrokeStyle(style string) { s.paint.Current.Stroke = style }
func (s *Surface) SetLineWidth(width float64)  { s.paint.Current.LineWidth = width }

func (s *Surface) FillRect(x, y, w, h float64) {
	x0, y0, x1, y1, ok := s.cells(x, y, w, h)
	if !ok {
		return
	}
	style := tcell.StyleDefault.Background(s.tcellColor(s.paint.Current.Fill))
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			s.screen.SetContent(cx, cy, ' ', nil, style)
		}
	}
}

// StrokeRect 只绘制矩形落在屏幕内的边框部分，保留格子原有的背景色
func (s *Surface) StrokeRect(x, y, w, h float64) {
	left, top, right, bottom := outerCells(x, y, w, h)
	fg := s.tcellColor(s.paint.Current.Stroke)

	for cy := top; cy <= bottom; cy++ {
		for cx := left; cx <= right; cx++ {
			onX := cx == left || cx == right
			onY := cy == top || cy == bottom
			if !onX && !onY {
				continue
			}
			s.put(cx, cy, borderRune(cx, cy, left, top, right, bottom), fg)
		}
	}
}

func (s *Surface) put(x, y int, r rune, fg tcell.Color) {
	sw, sh := s.screen.Size()
	if x < 0 || y < 0 || x >= sw || y >= sh {
		return
	}
	_, _, style, _ := s.screen.GetContent(x, y)
	s.screen.SetContent(x, y, r, nil, style.Foreground(fg))
}

func (s *Surface) tcellColor(style string) tcell.Color {
	c := s.palette.Color(style)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// cells 返回裁剪后的格子范围（闭区间），完全在屏幕外时 ok 为 false
func (s *Surface) cells(x, y, w, h float64) (x0, y0, x1, y1 int, ok bool) {
	x0, y0, x1, y1 = outerCells(x, y, w, h)
	sw, sh := s.screen.Size()
	x0 = max(x0, 0)
	y0 = max(y0, 0)
	x1 = min(x1, sw-1)
	y1 = min(y1, sh-1)
	return x0, y0, x1, y1, x0 <= x1 && y0 <= y1
}

func outerCells(x, y, w, h float64) (left, top, right, bottom int) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	left = int(math.Floor(x))
	top = int(math.Floor(y))
	right = int(math.Ceil(x+w)) - 1
	bottom = int(math.Ceil(y+h)) - 1
	if right < left {
		right = left
	}
	if bottom < top {
		bottom = top
	}
	return left, top, right, bottom
}

func borderRune(x, y, left, top, right, bottom int) rune {
	switch {
	case left == right && top == bottom:
		return '□'
	case left == right:
		return tcell.RuneVLine
	case top == bottom:
		return tcell.RuneHLine
	case x == left && y == top:
		return tcell.RuneULCorner
	case x == right && y == top:
		return tcell.RuneURCorner
	case x == left && y == bottom:
		return tcell.RuneLLCorner
	case x == right && y == bottom:
		return tcell.RuneLRCorner
	case y == top || y == bottom:
		return tcell.RuneHLine
	default:
		return tcell.RuneVLine
	}
}
