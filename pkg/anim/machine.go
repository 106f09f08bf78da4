package anim

import (
	"fmt"
	"time"

	"github.com/gonewx/gridworld/pkg/fsm"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/ref"
)

// ErrMissingWalkData 条件认为正在行动，但目标函数读到的快照中没有行动数据
var ErrMissingWalkData = fmt.Errorf("%w: walking", fsm.ErrMissingData)

// Machine 动画状态机
type Machine = fsm.Machine[State, Data]

// Rule 动画状态机规则
type Rule = fsm.Rule[State, Data]

// Rules 返回内置的转换规则（按顺序求值）
func Rules() []Rule {
	return []Rule{
		{
			Name: "start-action",
			When: func(s State, d Data) bool {
				return s.Action == Idle && IsWalking(d.Walking, d.CurrentTime)
			},
			To: func(_, _ State, d Data) (State, error) {
				if d.Walking == nil {
					return State{}, ErrMissingWalkData
				}
				action := Walk
				if d.Walking.TargetIsObstacle {
					action = Mine
				}
				return State{Action: action, Facing: FacingToward(d.WorldPos, d.Walking.TargetPos)}, nil
			},
		},
		{
			Name: "finish-action",
			When: func(s State, d Data) bool {
				return s.Action == Walk || (s.Action == Mine && !IsWalking(d.Walking, d.CurrentTime))
			},
			// 保留行动时的朝向
			To: func(leaving, _ State, _ Data) (State, error) {
				return State{Action: Idle, Facing: leaving.Facing}, nil
			},
		},
	}
}

// Sources 状态机读取的外部数据
type Sources struct {
	HP          *ref.Ref[int]
	MaxHP       *ref.Ref[int]
	WorldPos    *ref.Ref[grid.Coord]
	CurrentTime *ref.Ref[time.Duration]
	Walking     *ref.Ref[*WalkData]
}

// Snapshot 读取一次全部数据
// 行动数据被复制，之后对原值的修改不会影响快照。
func (s Sources) Snapshot() Data {
	var d Data
	if s.HP != nil {
		d.HP = s.HP.Get()
	}
	if s.MaxHP != nil {
		d.MaxHP = s.MaxHP.Get()
	}
	if s.WorldPos != nil {
		d.WorldPos = s.WorldPos.Get()
	}
	if s.CurrentTime != nil {
		d.CurrentTime = s.CurrentTime.Get()
	}
	if s.Walking != nil {
		if w := s.Walking.Get(); w != nil {
			c := *w
			d.Walking = &c
		}
	}
	return d
}

// NewMachine 使用内置规则创建动画状态机，初始状态 idle-down
func NewMachine(src Sources, opts ...fsm.Option[State, Data]) *Machine {
	return fsm.New(IdleDown, src.Snapshot, Rules(), opts...)
}

// NewMachineWithRules 使用自定义规则（例如脚本规则）创建动画状态机
func NewMachineWithRules(src Sources, initial State, rules []Rule, opts ...fsm.Option[State, Data]) *Machine {
	return fsm.New(initial, src.Snapshot, rules, opts...)
}
