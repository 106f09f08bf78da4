// Package anim 根据玩家数据推导动画状态
//
// 状态是 {动作, 朝向} 的组合，字符串形式为 "idle-down"、"walk-left"、"mine-up" 等。
// 动画状态机每个 tick 求值一次：
//
//   - idle 且正在行动（当前时间 < 行动结束时间）→ walk/mine + 朝向目标格子的方向
//   - walk/mine 且不再行动 → idle + 行动时的朝向
package anim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gonewx/gridworld/pkg/grid"
)

// ErrInvalidState 无法解析的状态字符串
var ErrInvalidState = errors.New("invalid animation state")

// Action 动作
type Action int

const (
	Idle Action = iota
	Walk
	Mine
)

var actionNames = [...]string{Idle: "idle", Walk: "walk", Mine: "mine"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Facing 朝向（只有四个方向）
type Facing int

const (
	Down Facing = iota
	Up
	Left
	Right
)

var facingNames = [...]string{Down: "down", Up: "up", Left: "left", Right: "right"}

func (f Facing) String() string {
	if int(f) < len(facingNames) {
		return facingNames[f]
	}
	return fmt.Sprintf("facing(%d)", int(f))
}

// Delta 朝向对应的单位格子偏移
func (f Facing) Delta() grid.Coord {
	switch f {
	case Up:
		return grid.C(0, -1, 0)
	case Left:
		return grid.C(-1, 0, 0)
	case Right:
		return grid.C(1, 0, 0)
	default:
		return grid.C(0, 1, 0)
	}
}

// State 动画状态
type State struct {
	Action Action
	Facing Facing
}

// IdleDown 初始状态
var IdleDown = State{Action: Idle, Facing: Down}

func (s State) String() string {
	return s.Action.String() + "-" + s.Facing.String()
}

// ParseState 解析 "action-facing" 形式的状态
func ParseState(s string) (State, error) {
	action, facing, ok := strings.Cut(s, "-")
	if !ok {
		return State{}, fmt.Errorf("%w %q", ErrInvalidState, s)
	}
	var st State
	if st.Action, ok = parseAction(action); !ok {
		return State{}, fmt.Errorf("%w %q: unknown action %q", ErrInvalidState, s, action)
	}
	if st.Facing, ok = ParseFacing(facing); !ok {
		return State{}, fmt.Errorf("%w %q: unknown facing %q", ErrInvalidState, s, facing)
	}
	return st, nil
}

func parseAction(s string) (Action, bool) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), true
		}
	}
	return Idle, false
}

// ParseFacing 解析朝向名称
func ParseFacing(s string) (Facing, bool) {
	for i, name := range facingNames {
		if name == s {
			return Facing(i), true
		}
	}
	return Down, false
}

// FacingToward 返回从 from 看向 to 的朝向
// 先比较 x，再比较 y；两者都相等时为 Down
func FacingToward(from, to grid.Coord) Facing {
	switch {
	case to.X < from.X:
		return Left
	case to.X > from.X:
		return Right
	case to.Y < from.Y:
		return Up
	default:
		return Down
	}
}

// WalkData 正在进行的行走/挖掘
type WalkData struct {
	SourcePos        grid.Coord
	TargetPos        grid.Coord
	TargetIsObstacle bool
	StartTime        time.Duration
	EndTime          time.Duration
}

// Progress 返回 now 时刻的完成比例（0~1）
func (w *WalkData) Progress(now time.Duration) float64 {
	if w == nil || w.EndTime <= w.StartTime {
		return 1
	}
	p := float64(now-w.StartTime) / float64(w.EndTime-w.StartTime)
	return min(max(p, 0), 1)
}

// IsWalking 行动存在且当前时间严格小于结束时间
func IsWalking(w *WalkData, now time.Duration) bool {
	return w != nil && now < w.EndTime
}

// Data 状态机每个 tick 读取的数据快照
type Data struct {
	HP, MaxHP   int
	WorldPos    grid.Coord
	CurrentTime time.Duration
	Walking     *WalkData
}
