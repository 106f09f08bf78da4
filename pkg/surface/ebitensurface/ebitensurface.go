// Package ebitensurface 把 *ebiten.Image 适配为 surface.Surface
package ebitensurface

import (
	"image/color"

	"github.com/gonewx/gridworld/pkg/surface"
	"github.com/gonewx/gridworld/pkg/vec"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Surface 在 ebiten 图像上绘制
// 同一个 Surface 可以跨帧复用，每帧调用 Bind 绑定新的屏幕图像。
type Surface struct {
	img       *ebiten.Image
	paint     *surface.PaintStack
	palette   *surface.Palette
	antialias bool
}

// New 创建适配器，img 可以为 nil（稍后通过 Bind 绑定）
func New(img *ebiten.Image) *Surface {
	return &Surface{
		img:     img,
		paint:   surface.NewPaintStack(),
		palette: surface.NewPalette(color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}),
	}
}

// Bind 绑定本帧的目标图像并重置绘制状态
func (s *Surface) Bind(img *ebiten.Image) *Surface {
	s.img = img
	s.paint = surface.NewPaintStack()
	return s
}

// SetAntialias 开关抗锯齿
func (s *Surface) SetAntialias(on bool) {
	s.antialias = on
}

// Palette 返回颜色缓存（用于输出无效颜色的日志）
func (s *Surface) Palette() *surface.Palette {
	return s.palette
}

func (s *Surface) Size() vec.Vec2 {
	if s.img == nil {
		return vec.Vec2{}
	}
	b := s.img.Bounds()
	return vec.Vec2{X: float64(b.Dx()), Y: float64(b.Dy())}
}

func (s *Surface) Save()    { s.paint.Save() }
func (s *Surface) Restore() { s.paint.Restore() }

func (s *Surface) SetFillStyle(style string)   { s.paint.Current.Fill = style }
func (s *Surface) SetStrokeStyle(style string) { s.paint.Current.Stroke = style }
func (s *Surface) SetLineWidth(width float64)  { s.paint.Current.LineWidth = width }

func (s *Surface) FillRect(x, y, w, h float64) {
	if s.img == nil {
		return
	}
	clr := s.palette.Color(s.paint.Current.Fill)
	vector.DrawFilledRect(s.img, float32(x), float32(y), float32(w), float32(h), clr, s.antialias)
}

func (s *Surface) StrokeRect(x, y, w, h float64) {
	if s.img == nil {
		return
	}
	clr := s.palette.Color(s.paint.Current.Stroke)
	lw := s.paint.Current.LineWidth
	if lw <= 0 {
		lw = 1
	}
	vector.StrokeRect(s.img, float32(x), float32(y), float32(w), float32(h), float32(lw), clr, s.antialias)
}
