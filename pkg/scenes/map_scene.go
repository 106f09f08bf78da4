package scenes

import (
	"errors"
	"fmt"
	"time"

	"github.com/gonewx/gridworld/pkg/anim"
	"github.com/gonewx/gridworld/pkg/camera"
	"github.com/gonewx/gridworld/pkg/config"
	"github.com/gonewx/gridworld/pkg/ecs"
	"github.com/gonewx/gridworld/pkg/entities"
	"github.com/gonewx/gridworld/pkg/game"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/layers"
	"github.com/gonewx/gridworld/pkg/ref"
	"github.com/gonewx/gridworld/pkg/script"
	"github.com/gonewx/gridworld/pkg/surface"
	"github.com/gonewx/gridworld/pkg/utils"
	"github.com/gonewx/gridworld/pkg/vec"
	"github.com/gonewx/gridworld/pkg/world"
	"go.uber.org/zap"
)

// 图层颜色
const (
	ShadowColor     = "#0b0d10"
	GridLineColor   = "#2a2f36"
	DefaultFogColor = "#202020"
)

// MapSceneOptions 创建地图场景所需的参数
type MapSceneOptions struct {
	Config *config.Config
	Map    *config.MapConfig
	// Machine 脚本动画规则，为 nil 时使用内置规则
	Machine *config.MachineDef
	// Settings 持久化的视图设置，可为 nil
	Settings *game.SettingsManager
	Input    InputSource
	Logger   *zap.Logger

	// HideGridLines 不绘制网格线（终端等低分辨率表面）
	HideGridLines bool
}

// MapScene 探索一张地图的场景
//
// 每个 tick：推进游戏时钟 → 处理输入（视图控制 + 分发给实体）→ 更新玩家 → 摄像机跟随。
// 每帧：运行生命周期的渲染订阅（GameMap.Render）。
type MapScene struct {
	cfg      *config.Config
	mapCfg   *config.MapConfig
	settings *game.SettingsManager
	input    InputSource

	grid    *world.Grid
	gameMap *world.GameMap
	loop    *world.Loop
	ids     *ecs.IDPool
	player  *entities.Player
	markers []*entities.Marker
	engine  *script.Engine

	clock    *ref.Ref[time.Duration]
	camera   *ref.Ref[camera.Camera]
	cellSize *ref.Ref[float64]
	pointer  *ref.Ref[*vec.Vec2]
	bgColor  *ref.Ref[string]

	screenSize vec.Vec2 // 最近一帧的表面尺寸，用于换算指针坐标
	frames     uint64
	closed     bool
	log        *zap.Logger
}

// NewMapScene 根据配置组装地图场景
func NewMapScene(opts MapSceneOptions) (*MapScene, error) {
	if opts.Config == nil {
		return nil, errors.New("map scene: config cannot be nil")
	}
	if opts.Map == nil {
		return nil, errors.New("map scene: map cannot be nil")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config

	strategy, ok := grid.ParseStrategy(cfg.View.SegmentStrategy)
	if !ok {
		return nil, fmt.Errorf("map scene: unknown segment strategy %q", cfg.View.SegmentStrategy)
	}
	g, err := world.LoadGrid(opts.Map, grid.WithStrategy(strategy))
	if err != nil {
		return nil, fmt.Errorf("map scene: %w", err)
	}

	s := &MapScene{
		cfg:      cfg,
		mapCfg:   opts.Map,
		settings: opts.Settings,
		input:    opts.Input,
		grid:     g,
		loop:     world.NewLoop(),
		ids:      ecs.NewIDPool(),
		clock:    ref.New[time.Duration](0),
		pointer:  ref.New[*vec.Vec2](nil),
		bgColor:  ref.New(cfg.View.BgColor),
		log:      log.Named("scene").With(zap.String("map", opts.Map.Name)),
	}

	start := world.MapPos(opts.Map, opts.Map.Player)
	cam := camera.Camera{X: float64(start.X), Y: float64(start.Y), Z: start.Z, Zoom: cfg.View.Zoom}
	cellSize := cfg.View.CellSize
	if s.settings != nil && s.settings.Persistent() {
		v := s.settings.GetSettings()
		cam.Zoom = v.Zoom
		cellSize = v.CellSize
		// 保存的位置在同一深度且落在已有格子上时才恢复
		saved := v.Camera()
		if saved.Z == start.Z {
			if _, ok := g.GetCell(grid.RoundVec3(vec.Vec3{X: saved.X, Y: saved.Y, Z: float64(saved.Z)})); ok {
				cam.X, cam.Y = saved.X, saved.Y
			}
		}
	}
	cam.Zoom = camera.ClampZoom(cam.EffectiveZoom(), cfg.View.MinZoom, cfg.View.MaxZoom)
	s.camera = ref.New(cam)
	s.cellSize = ref.New(cellSize)

	fog := opts.Map.FogColor
	if fog == "" {
		fog = DefaultFogColor
	}
	var above []world.RenderCell
	if !opts.HideGridLines {
		above = append(above, layers.GridLines(GridLineColor))
	}
	s.gameMap, err = world.NewGameMap(world.MapOptions{
		Grid:             g,
		Camera:           s.camera,
		CellSize:         s.cellSize,
		PointerScreenPos: s.pointer,
		BgColor:          s.bgColor,
		Below:            []world.RenderCell{layers.Terrain(opts.Map.TerrainColors, fog)},
		BeforeEntities:   layers.Shadow(ShadowColor),
		Above:            above,
		Logger:           log,
	})
	if err != nil {
		return nil, fmt.Errorf("map scene: %w", err)
	}

	if err := s.spawnPlayer(opts.Machine, start); err != nil {
		s.closeEngine()
		return nil, err
	}
	for _, md := range opts.Map.Markers {
		m, err := entities.NewMarker(s.ids.CreateEntity(), g, md.Name, world.MapPos(opts.Map, config.Point{X: md.X, Y: md.Y}), md.Color)
		if err != nil {
			s.closeEngine()
			return nil, fmt.Errorf("map scene: marker %s: %w", md.Name, err)
		}
		if err := s.gameMap.Spawn(m); err != nil {
			s.closeEngine()
			return nil, fmt.Errorf("map scene: marker %s: %w", md.Name, err)
		}
		s.markers = append(s.markers, m)
	}

	s.gameMap.Setup(s.loop)
	s.log.Info("map scene ready",
		zap.Int("cells", g.Len()),
		zap.Int("entities", s.gameMap.Entities().Len()),
		zap.Stringer("strategy", strategy))
	return s, nil
}

func (s *MapScene) spawnPlayer(def *config.MachineDef, start grid.Coord) error {
	pc := s.cfg.Player
	opts := entities.PlayerOptions{
		ID:           s.ids.CreateEntity(),
		Grid:         s.grid,
		Start:        start,
		Clock:        s.clock,
		MaxHP:        pc.MaxHP,
		StepDuration: pc.StepDuration,
		MineDuration: pc.MineDuration,
		RevealRadius: pc.RevealRadius,
		Logger:       s.log,
	}
	if ease, ok := utils.ParseEasing(pc.WalkEasing); ok {
		opts.WalkEasing = ease
	}
	if def != nil {
		s.engine = script.NewEngine(s.log)
		rules, initial, err := anim.LoadScriptedRules(def, s.engine)
		if err != nil {
			return fmt.Errorf("map scene: %w", err)
		}
		opts.Rules = rules
		opts.Initial = initial
	}

	p, err := entities.NewPlayer(opts)
	if err != nil {
		return fmt.Errorf("map scene: %w", err)
	}
	if err := s.gameMap.Spawn(p); err != nil {
		return fmt.Errorf("map scene: player: %w", err)
	}
	p.Reveal()
	s.player = p
	return nil
}

// Update 推进一个 tick，deltaTime 单位为秒
func (s *MapScene) Update(deltaTime float64) {
	if s.closed {
		return
	}
	if deltaTime > 0 {
		s.clock.Set(s.clock.Get() + time.Duration(deltaTime*float64(time.Second)))
	}

	if s.input != nil {
		for _, ev := range s.input.Poll() {
			s.handleInput(ev)
		}
	}

	if err := s.player.Update(); err != nil {
		s.log.Error("player update failed", zap.Error(err))
	}

	cam := camera.Follow(s.camera.Get(), s.player.WorldPos(), s.cfg.View.FollowFactor)
	s.camera.Set(cam)
}

// handleInput 先处理视图控制，再把事件分发给实体
func (s *MapScene) handleInput(ev world.InputEvent) {
	switch ev.Kind {
	case world.InputKey:
		switch ev.Key {
		case world.KeyZoomIn:
			s.zoomBy(s.cfg.View.ZoomStep)
		case world.KeyZoomOut:
			s.zoomBy(-s.cfg.View.ZoomStep)
		}
	case world.InputPointerMove:
		p := ev.Pointer
		s.pointer.Set(&p)
	case world.InputPointerLeave:
		s.pointer.Set(nil)
	case world.InputPointerDown:
		p := ev.Pointer
		s.pointer.Set(&p)
		s.stepToward(p)
	}
	s.loop.Input(ev)
}

func (s *MapScene) zoomBy(step float64) {
	cam := s.camera.Get()
	cam.Zoom = camera.ClampZoom(cam.EffectiveZoom()+step, s.cfg.View.MinZoom, s.cfg.View.MaxZoom)
	s.camera.Set(cam)
}

// stepToward 点击与玩家相邻（四方向）的格子时朝它发起行动
func (s *MapScene) stepToward(screen vec.Vec2) {
	size := s.screenSize
	if size == (vec.Vec2{}) {
		return
	}
	target := grid.RoundVec3(camera.ScreenToWorld(size, s.camera.Get(), screen, s.cellSize.Get()))
	from := s.player.WorldPos()
	d := grid.C(target.X-from.X, target.Y-from.Y, 0)
	if abs(d.X)+abs(d.Y) != 1 {
		return
	}
	s.player.Begin(d)
}

// Draw 渲染一帧
func (s *MapScene) Draw(surf surface.Surface) {
	s.loop.Render(surf)
	s.frames++
	s.screenSize = surf.Size()
}

// SaveOnExit 保存视图设置
func (s *MapScene) SaveOnExit() bool {
	if s.settings == nil {
		return true
	}
	s.settings.SetCamera(s.camera.Get())
	s.settings.SetCellSize(s.cellSize.Get())
	if err := s.settings.Save(); err != nil {
		s.log.Warn("failed to save view settings", zap.Error(err))
		return false
	}
	return true
}

// Close 销毁生命周期作用域（触发实体销毁钩子）并释放脚本引擎，重复调用无效果
func (s *MapScene) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.loop.Destroy()
	s.closeEngine()
	s.log.Info("map scene closed", zap.Uint64("frames", s.frames))
}

func (s *MapScene) closeEngine() {
	if s.engine != nil {
		s.engine.Close()
		s.engine = nil
	}
}

func (s *MapScene) Player() *entities.Player        { return s.player }
func (s *MapScene) Markers() []*entities.Marker     { return s.markers }
func (s *MapScene) GameMap() *world.GameMap         { return s.gameMap }
func (s *MapScene) Grid() *world.Grid               { return s.grid }
func (s *MapScene) Camera() *ref.Ref[camera.Camera] { return s.camera }
func (s *MapScene) Clock() *ref.Ref[time.Duration]  { return s.clock }
func (s *MapScene) Pointer() *ref.Ref[*vec.Vec2]    { return s.pointer }
func (s *MapScene) Frames() uint64                  { return s.frames }
func (s *MapScene) Closed() bool                    { return s.closed }
func (s *MapScene) MapConfig() *config.MapConfig    { return s.mapCfg }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
