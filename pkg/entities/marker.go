package entities

import (
	"errors"

	"github.com/gonewx/gridworld/pkg/ecs"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/ref"
	"github.com/gonewx/gridworld/pkg/world"
)

// DefaultMarkerColor 未指定颜色时使用
const DefaultMarkerColor = "#b070ff"

// Marker 静态标记（例如水晶），不响应输入
// 同一格子上有多个实体时，标记按其在格子列表中的位置错开绘制。
type Marker struct {
	id    ecs.EntityID
	name  string
	color string
	mover *world.Mover
}

// NewMarker 创建标记
func NewMarker(id ecs.EntityID, g *world.Grid, name string, pos grid.Coord, color string) (*Marker, error) {
	if g == nil {
		return nil, errors.New("marker: grid cannot be nil")
	}
	if color == "" {
		color = DefaultMarkerColor
	}
	m := &Marker{id: id, name: name, color: color}
	m.mover = world.NewMover(g, m, ref.New(pos))
	return m, nil
}

func (m *Marker) ID() ecs.EntityID             { return m.id }
func (m *Marker) Name() string                 { return m.name }
func (m *Marker) Color() string                { return m.color }
func (m *Marker) WorldPos() grid.Coord         { return m.mover.WorldPos() }
func (m *Marker) Move(target grid.Coord) error { return m.mover.Move(target) }
func (m *Marker) Place() error                 { return m.mover.Place() }
func (m *Marker) Detach() error                { return m.mover.Detach() }

func (m *Marker) Setup(h *world.Hooks) {
	h.OnCellRender(m.render)
}

func (m *Marker) render(in world.CellRenderInput) {
	size := in.ScaledCellSize()
	slot := max(in.Cell.IndexOf(m.id), 0)
	cx := in.ScreenPos.X + size*0.25 - float64(slot)*size*0.12
	cy := in.ScreenPos.Y + size*0.25

	long, short := size*0.24, size*0.1
	s := in.Surface
	s.Save()
	s.SetFillStyle(m.color)
	s.FillRect(cx-long/2, cy-short/2, long, short)
	s.FillRect(cx-short/2, cy-long/2, short, long)
	s.Restore()
}
