package world

import (
	"errors"
	"fmt"

	"github.com/gonewx/gridworld/pkg/camera"
	"github.com/gonewx/gridworld/pkg/ecs"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/ref"
	"github.com/gonewx/gridworld/pkg/surface"
	"github.com/gonewx/gridworld/pkg/vec"
	"go.uber.org/zap"
)

// 指针高亮样式
const (
	HighlightRevealed  = "#f0f0f0"
	HighlightHidden    = "#00d000"
	HighlightLineWidth = 2.0
)

// MapOptions GameMap 的构造参数
// 引用类型的字段由宿主在帧之间写入，GameMap 每帧只读取一次。
type MapOptions struct {
	Grid   *Grid
	Camera *ref.Ref[camera.Camera]
	// CellSize 未缩放时一个格子的像素边长
	CellSize *ref.Ref[float64]
	// PointerScreenPos 指针屏幕坐标，值为 nil 表示当前没有指针
	PointerScreenPos *ref.Ref[*vec.Vec2]
	BgColor          *ref.Ref[string]

	// 图层，按以下顺序绘制：
	// Below < BeforeEntities < 实体钩子 < AfterEntities < Above < 指针高亮
	Below          []RenderCell
	BeforeEntities RenderCell
	AfterEntities  RenderCell
	Above          []RenderCell

	Logger *zap.Logger
}

// FrameStats 最近一帧的渲染统计
type FrameStats struct {
	Frames      uint64
	From, To    grid.Coord
	Cells       int // 分段中的格子位置数（含空位）
	Populated   int // 实际存在的格子数
	EntityHooks int // 调用的 onCellRender 钩子数
	Highlight   bool
}

// GameMap 格子世界的地图实体
// 持有网格引用和格子实体注册表，负责分层渲染与输入分发。
type GameMap struct {
	grid     *Grid
	camera   *ref.Ref[camera.Camera]
	cellSize *ref.Ref[float64]
	pointer  *ref.Ref[*vec.Vec2]
	bgColor  *ref.Ref[string]

	below          []RenderCell
	beforeEntities RenderCell
	afterEntities  RenderCell
	above          []RenderCell

	entities *ecs.Registry[CellEntity, Hooks]
	setup    bool
	stats    FrameStats
	log      *zap.Logger
}

// NewGameMap 创建地图；未提供的引用使用默认值
func NewGameMap(opts MapOptions) (*GameMap, error) {
	if opts.Grid == nil {
		return nil, errors.New("game map: grid is required")
	}
	m := &GameMap{
		grid:           opts.Grid,
		camera:         opts.Camera,
		cellSize:       opts.CellSize,
		pointer:        opts.PointerScreenPos,
		bgColor:        opts.BgColor,
		below:          opts.Below,
		beforeEntities: opts.BeforeEntities,
		afterEntities:  opts.AfterEntities,
		above:          opts.Above,
		entities:       ecs.NewRegistry[CellEntity, Hooks](),
		log:            opts.Logger,
	}
	if m.camera == nil {
		m.camera = ref.New(camera.Default())
	}
	if m.cellSize == nil {
		m.cellSize = ref.New(32.0)
	}
	if m.pointer == nil {
		m.pointer = ref.New[*vec.Vec2](nil)
	}
	if m.bgColor == nil {
		m.bgColor = ref.New("#000000")
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	return m, nil
}

// Grid 返回地图使用的网格
func (m *GameMap) Grid() *Grid {
	return m.grid
}

// Entities 返回格子实体注册表
func (m *GameMap) Entities() *ecs.Registry[CellEntity, Hooks] {
	return m.entities
}

// Register 注册实体（Setup 前调用，不放入格子也不调用实体的 Setup）
func (m *GameMap) Register(e CellEntity) {
	if !m.entities.Add(e) {
		m.log.Warn("entity already registered", zap.Uint64("entity", uint64(e.ID())))
	}
}

// Setup 把 Setup 传播给已注册的实体，并向宿主作用域订阅输入、渲染和销毁
func (m *GameMap) Setup(lc Lifecycle) {
	if m.setup {
		m.log.Warn("game map setup called twice")
		return
	}
	m.setup = true

	for _, e := range m.entities.List() {
		e.Setup(m.entities.Hooks(e.ID()))
	}

	lc.OnInput(m.DispatchInput)
	lc.OnRender(m.Render)
	lc.OnDestroy(m.Destroy)

	m.log.Debug("game map setup", zap.Int("entities", m.entities.Len()), zap.Int("cells", m.grid.Len()))
}

// Spawn 在运行时加入实体：注册、放入当前格子，地图已初始化时立即调用 Setup
func (m *GameMap) Spawn(e CellEntity) error {
	if m.entities.Contains(e.ID()) {
		return fmt.Errorf("spawn entity %d: already registered", e.ID())
	}
	if p, ok := e.(Placer); ok {
		if err := p.Place(); err != nil {
			return fmt.Errorf("spawn entity %d: %w", e.ID(), err)
		}
	}
	m.entities.Add(e)
	if m.setup {
		e.Setup(m.entities.Hooks(e.ID()))
	}
	return nil
}

// Despawn 移除实体：移出格子、调用其销毁钩子并注销
// 移出格子失败时实体保持注册。
func (m *GameMap) Despawn(e CellEntity) error {
	if !m.entities.Contains(e.ID()) {
		return nil
	}
	if p, ok := e.(Placer); ok {
		if err := p.Detach(); err != nil {
			return fmt.Errorf("despawn entity %d: %w", e.ID(), err)
		}
	}
	if h, ok := m.entities.HooksFor(e.ID()); ok {
		for _, fn := range h.destroy {
			fn()
		}
	}
	m.entities.Remove(e)
	return nil
}

// DispatchInput 按实体注册顺序调用每个实体的 onInput 钩子，不按可见性过滤
func (m *GameMap) DispatchInput(ev InputEvent) {
	for _, e := range m.entities.List() {
		h, ok := m.entities.HooksFor(e.ID())
		if !ok {
			continue
		}
		for _, fn := range h.input {
			fn(ev)
		}
	}
}

// Destroy 调用实体的销毁钩子后清空注册表
func (m *GameMap) Destroy() {
	for _, e := range m.entities.List() {
		h, ok := m.entities.HooksFor(e.ID())
		if !ok {
			continue
		}
		for _, fn := range h.destroy {
			fn()
		}
	}
	m.entities.Clear()
	m.log.Debug("game map destroyed", zap.Uint64("frames", m.stats.Frames))
}

// Stats 返回最近一帧的渲染统计
func (m *GameMap) Stats() FrameStats {
	return m.stats
}

// frame 一帧内不变的渲染参数
type frame struct {
	surface    surface.Surface
	screenSize vec.Vec2
	camera     camera.Camera
	cellSize   float64
	segment    *grid.Segment[*CellData]
}

func (f *frame) input(pos grid.Coord, cell *CellData) CellRenderInput {
	return CellRenderInput{
		Surface:      f.surface,
		WorldPos:     pos,
		ScreenPos:    camera.WorldToScreen(f.screenSize, f.camera, pos, f.cellSize),
		ScreenSize:   f.screenSize,
		Cell:         cell,
		Camera:       f.camera,
		CellSize:     f.cellSize,
		HalfCellSize: f.cellSize / 2,
	}
}

// drawLayer 按行优先顺序对分段中的每个位置调用 draw
func (f *frame) drawLayer(draw func(in CellRenderInput)) {
	f.segment.Each(func(pos grid.Coord, cell *CellData, ok bool) {
		if !ok {
			cell = nil
		}
		draw(f.input(pos, cell))
	})
}

// Render 绘制一帧
// 只读取网格和注册表，不做任何修改。
func (m *GameMap) Render(s surface.Surface) {
	f := &frame{
		surface:    s,
		screenSize: s.Size(),
		camera:     m.camera.Get(),
		cellSize:   m.cellSize.Get(),
	}

	// 1~2. 可见矩形 → 网格分段
	rect := camera.VisibleWorldRect(f.screenSize, f.camera, f.cellSize)
	f.segment = m.grid.GetSegment(rect)

	stats := FrameStats{
		Frames: m.stats.Frames + 1,
		From:   f.segment.From,
		To:     f.segment.To,
		Cells:  f.segment.Width() * f.segment.Height(),
	}

	// 3. 清屏
	s.Save()
	s.SetFillStyle(m.bgColor.Get())
	s.FillRect(0, 0, f.screenSize.X, f.screenSize.Y)
	s.Restore()

	// 4. 实体下方的图层
	for _, layer := range m.below {
		if layer != nil {
			f.drawLayer(layer)
		}
	}

	// 5. 实体层
	f.drawLayer(func(in CellRenderInput) {
		if in.Cell != nil {
			stats.Populated++
		}
		if m.beforeEntities != nil {
			m.beforeEntities(in)
		}
		if in.Cell != nil {
			for _, e := range in.Cell.Entities {
				h, ok := m.entities.HooksFor(e.ID())
				if !ok {
					continue
				}
				for _, fn := range h.cellRender {
					fn(in)
					stats.EntityHooks++
				}
			}
		}
		if m.afterEntities != nil {
			m.afterEntities(in)
		}
	})

	// 6. 实体上方的图层
	for _, layer := range m.above {
		if layer != nil {
			f.drawLayer(layer)
		}
	}

	// 7. 指针高亮
	if p := m.pointer.Get(); p != nil {
		m.drawHighlight(f, *p)
		stats.Highlight = true
	}

	m.stats = stats
	if ce := m.log.Check(zap.DebugLevel, "frame rendered"); ce != nil {
		ce.Write(
			zap.Uint64("frame", stats.Frames),
			zap.Stringer("from", stats.From),
			zap.Stringer("to", stats.To),
			zap.Int("populated", stats.Populated),
			zap.Int("entityHooks", stats.EntityHooks),
		)
	}
}

// drawHighlight 在指针所在格子周围描边
// 指针落在分段之外时按"无格子"处理，仍然绘制未揭示颜色的高亮。
func (m *GameMap) drawHighlight(f *frame, pointer vec.Vec2) {
	world := camera.ScreenToWorld(f.screenSize, f.camera, pointer, f.cellSize)
	pos := grid.RoundVec3(world)

	cell, ok := f.segment.AtWorld(pos)
	revealed := ok && cell != nil && cell.Revealed

	center := camera.WorldToScreen(f.screenSize, f.camera, pos, f.cellSize)
	size := f.cellSize * f.camera.EffectiveZoom()

	s := f.surface
	s.Save()
	if revealed {
		s.SetStrokeStyle(HighlightRevealed)
	} else {
		s.SetStrokeStyle(HighlightHidden)
	}
	s.SetLineWidth(HighlightLineWidth)
	s.StrokeRect(center.X-size/2, center.Y-size/2, size, size)
	s.Restore()
}
