// Package entities 提供格子世界中的具体实体
//
// 实体通过组合 world.Mover 获得移动能力，只在 Setup 中注册钩子。
package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/gonewx/gridworld/pkg/anim"
	"github.com/gonewx/gridworld/pkg/ecs"
	"github.com/gonewx/gridworld/pkg/fsm"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/ref"
	"github.com/gonewx/gridworld/pkg/utils"
	"github.com/gonewx/gridworld/pkg/world"
	"go.uber.org/zap"
)

// 玩家各动作的颜色
const (
	PlayerIdleColor   = "#3fa7ff"
	PlayerWalkColor   = "#5fd35f"
	PlayerMineColor   = "#e0a030"
	PlayerFacingColor = "#ffffff"
	PlayerHPColor     = "#d03030"
)

// PlayerOptions 创建玩家所需的参数
type PlayerOptions struct {
	ID    ecs.EntityID
	Grid  *world.Grid
	Start grid.Coord
	// Clock 游戏时钟，由场景每个 tick 推进
	Clock *ref.Ref[time.Duration]

	MaxHP        int
	StepDuration time.Duration
	MineDuration time.Duration
	RevealRadius int
	// WalkEasing 行走时的位移缓动，nil 为匀速
	WalkEasing utils.Easing

	// Rules 动画规则，为 nil 时使用 anim.Rules()，初始状态 idle-down
	Rules   []anim.Rule
	Initial anim.State

	Logger *zap.Logger
}

// Player 玩家控制的格子实体
//
// 方向键发起一次行走；目标格子是障碍时改为挖掘。行动进行中忽略新的方向键，
// 行动在结束时间到达后的第一次 Update 中完成。
type Player struct {
	id    ecs.EntityID
	grid  *world.Grid
	mover *world.Mover

	pos     *ref.Ref[grid.Coord]
	hp      *ref.Ref[int]
	maxHP   *ref.Ref[int]
	walking *ref.Ref[*anim.WalkData]
	clock   *ref.Ref[time.Duration]

	machine *anim.Machine

	stepDuration time.Duration
	mineDuration time.Duration
	revealRadius int
	walkEasing   utils.Easing

	log *zap.Logger
}

// NewPlayer 创建玩家（尚未放入网格，由 GameMap.Spawn 放置）
func NewPlayer(opts PlayerOptions) (*Player, error) {
	if opts.Grid == nil {
		return nil, errors.New("player: grid cannot be nil")
	}
	if opts.Clock == nil {
		return nil, errors.New("player: clock cannot be nil")
	}
	if opts.ID == ecs.InvalidEntity {
		return nil, errors.New("player: invalid entity id")
	}
	if opts.StepDuration <= 0 {
		return nil, fmt.Errorf("player: step duration must be positive, got %v", opts.StepDuration)
	}
	if opts.MineDuration <= 0 {
		opts.MineDuration = opts.StepDuration
	}
	if opts.MaxHP <= 0 {
		opts.MaxHP = 1
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	p := &Player{
		id:           opts.ID,
		grid:         opts.Grid,
		pos:          ref.New(opts.Start),
		hp:           ref.New(opts.MaxHP),
		maxHP:        ref.New(opts.MaxHP),
		walking:      ref.New[*anim.WalkData](nil),
		clock:        opts.Clock,
		stepDuration: opts.StepDuration,
		mineDuration: opts.MineDuration,
		revealRadius: opts.RevealRadius,
		walkEasing:   opts.WalkEasing,
		log:          log.With(zap.Uint64("entity", uint64(opts.ID))),
	}
	p.mover = world.NewMover(opts.Grid, p, p.pos)

	src := anim.Sources{
		HP:          p.hp,
		MaxHP:       p.maxHP,
		WorldPos:    p.pos,
		CurrentTime: p.clock,
		Walking:     p.walking,
	}
	machineOpts := []fsm.Option[anim.State, anim.Data]{
		fsm.WithLogger[anim.State, anim.Data](p.log),
	}
	if opts.Rules == nil {
		p.machine = anim.NewMachine(src, machineOpts...)
	} else {
		p.machine = anim.NewMachineWithRules(src, opts.Initial, opts.Rules, machineOpts...)
	}
	return p, nil
}

func (p *Player) ID() ecs.EntityID { return p.id }

// WorldPos 当前格子坐标
func (p *Player) WorldPos() grid.Coord { return p.mover.WorldPos() }

// Move 立即移动到目标格子
func (p *Player) Move(target grid.Coord) error { return p.mover.Move(target) }

func (p *Player) Place() error  { return p.mover.Place() }
func (p *Player) Detach() error { return p.mover.Detach() }

// Position 位置单元（摄像机跟随使用）
func (p *Player) Position() *ref.Ref[grid.Coord] { return p.pos }

// HP 生命值单元
func (p *Player) HP() *ref.Ref[int] { return p.hp }

// MaxHP 最大生命值单元
func (p *Player) MaxHP() *ref.Ref[int] { return p.maxHP }

// Walking 当前行动，没有行动时为 nil
func (p *Player) Walking() *anim.WalkData { return p.walking.Get() }

// Busy 是否有未完成的行动
func (p *Player) Busy() bool { return p.walking.Get() != nil }

// State 当前动画状态
func (p *Player) State() anim.State { return p.machine.State() }

// Machine 动画状态机
func (p *Player) Machine() *anim.Machine { return p.machine }

// Setup 注册钩子
func (p *Player) Setup(h *world.Hooks) {
	h.OnInput(p.onInput)
	h.OnCellRender(p.onCellRender)
	h.OnDestroy(func() {
		p.log.Info("player destroyed",
			zap.Stringer("pos", p.WorldPos()),
			zap.Stringer("state", p.machine.State()))
	})
}

func (p *Player) onInput(ev world.InputEvent) {
	if ev.Kind != world.InputKey {
		return
	}
	delta, ok := ev.Key.Direction()
	if !ok {
		return
	}
	p.Begin(delta)
}

// Begin 朝 delta 方向发起一次行动，返回是否成功发起
// 已有行动或目标处没有格子时返回 false。
func (p *Player) Begin(delta grid.Coord) bool {
	if p.Busy() {
		return false
	}
	from := p.WorldPos()
	target := from.Add(delta)
	cell, ok := p.grid.GetCell(target)
	if !ok || cell == nil {
		p.log.Debug("action blocked", zap.Stringer("target", target))
		return false
	}

	d := p.stepDuration
	if cell.Obstacle {
		d = p.mineDuration
	}
	now := p.clock.Get()
	p.walking.Set(&anim.WalkData{
		SourcePos:        from,
		TargetPos:        target,
		TargetIsObstacle: cell.Obstacle,
		StartTime:        now,
		EndTime:          now + d,
	})
	return true
}

// Update 完成到期的行动并对动画状态机求值一次
// 完成失败时行动保留，下一次 Update 重试。
func (p *Player) Update() error {
	if w := p.walking.Get(); w != nil && !anim.IsWalking(w, p.clock.Get()) {
		if err := p.finish(w); err != nil {
			return err
		}
		p.walking.Set(nil)
	}
	if _, err := p.machine.Evaluate(); err != nil {
		return fmt.Errorf("player %d: %w", p.id, err)
	}
	return nil
}

func (p *Player) finish(w *anim.WalkData) error {
	if w.TargetIsObstacle {
		cell, ok := p.grid.GetCell(w.TargetPos)
		if !ok || cell == nil {
			return fmt.Errorf("player %d: finish mine: %w: %v", p.id, world.ErrInvalidDestination, w.TargetPos)
		}
		cell.Obstacle = false
		cell.Revealed = true
		p.log.Debug("mined", zap.Stringer("target", w.TargetPos))
		return nil
	}

	if err := p.Move(w.TargetPos); err != nil {
		return fmt.Errorf("player %d: finish walk: %w", p.id, err)
	}
	p.Reveal()
	return nil
}

// Reveal 揭示当前位置周围 RevealRadius 范围内（同一深度）的格子
func (p *Player) Reveal() int {
	c := p.WorldPos()
	r := p.revealRadius
	n := 0
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			cell, ok := p.grid.GetCell(grid.C(c.X+dx, c.Y+dy, c.Z))
			if ok && cell != nil && !cell.Revealed {
				cell.Revealed = true
				n++
			}
		}
	}
	return n
}

func (p *Player) onCellRender(in world.CellRenderInput) {
	s := in.Surface
	size := in.ScaledCellSize()
	state := p.machine.State()

	// 动作取自行动数据，状态机的 walk 状态只持续一次求值
	action := anim.Idle
	center := in.ScreenPos
	if w := p.walking.Get(); w != nil {
		action = anim.Walk
		if w.TargetIsObstacle {
			action = anim.Mine
		} else {
			t := p.walkEasing.Apply(w.Progress(p.clock.Get()))
			center.X += float64(w.TargetPos.X-w.SourcePos.X) * size * t
			center.Y += float64(w.TargetPos.Y-w.SourcePos.Y) * size * t
		}
	}

	body := size * 0.6
	s.Save()
	s.SetFillStyle(actionColor(action))
	s.FillRect(center.X-body/2, center.Y-body/2, body, body)

	mark := size * 0.16
	d := state.Facing.Delta()
	mx := center.X + float64(d.X)*body*0.3
	my := center.Y + float64(d.Y)*body*0.3
	s.SetFillStyle(PlayerFacingColor)
	s.FillRect(mx-mark/2, my-mark/2, mark, mark)

	if hp, maxHP := p.hp.Get(), p.maxHP.Get(); hp < maxHP && maxHP > 0 {
		frac := float64(max(hp, 0)) / float64(maxHP)
		s.SetFillStyle(PlayerHPColor)
		s.FillRect(center.X-body/2, center.Y-body/2-size*0.1, body*frac, size*0.06)
	}
	s.Restore()
}

func actionColor(a anim.Action) string {
	switch a {
	case anim.Walk:
		return PlayerWalkColor
	case anim.Mine:
		return PlayerMineColor
	default:
		return PlayerIdleColor
	}
}
