// Package fsm 提供按规则顺序求值的通用有限状态机
//
// 状态机持有当前状态、上一个状态以及一个数据快照函数。宿主每个 tick 调用一次
// Evaluate：读取最新快照，按声明顺序检查规则，第一条条件成立的规则通过其目标
// 函数决定新状态；没有规则匹配时状态不变。
package fsm

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrMissingData 规则条件成立但目标函数需要的数据缺失
// 这是调用方违反约定，不是可恢复的运行时状态
var ErrMissingData = errors.New("fsm: required data missing")

// Rule 一条转换规则
type Rule[S comparable, D any] struct {
	Name string
	// When 条件，state 为当前状态
	When func(state S, data D) bool
	// To 目标函数，state 为即将离开的状态，previous 为它之前的状态
	To func(state, previous S, data D) (S, error)
}

// Option 状态机选项
type Option[S comparable, D any] func(*Machine[S, D])

// WithLogger 设置日志记录器，状态变化在 debug 级别记录
func WithLogger[S comparable, D any](log *zap.Logger) Option[S, D] {
	return func(m *Machine[S, D]) {
		if log != nil {
			m.log = log
		}
	}
}

// WithOnChange 设置状态变化回调
func WithOnChange[S comparable, D any](fn func(from, to S)) Option[S, D] {
	return func(m *Machine[S, D]) {
		m.onChange = fn
	}
}

// Machine 有限状态机
type Machine[S comparable, D any] struct {
	initial  S
	state    S
	previous S
	data     D
	snapshot func() D
	rules    []Rule[S, D]

	changes  uint64
	onChange func(from, to S)
	log      *zap.Logger
}

// New 创建状态机
// snapshot 在每次 Evaluate 时调用一次以读取最新数据。
func New[S comparable, D any](initial S, snapshot func() D, rules []Rule[S, D], opts ...Option[S, D]) *Machine[S, D] {
	m := &Machine[S, D]{
		initial:  initial,
		state:    initial,
		previous: initial,
		snapshot: snapshot,
		rules:    rules,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Evaluate 求值一次
// 目标函数失败时状态保持不变，返回带规则名的错误。
func (m *Machine[S, D]) Evaluate() (bool, error) {
	if m.snapshot != nil {
		m.data = m.snapshot()
	}

	for i := range m.rules {
		rule := &m.rules[i]
		if rule.When == nil || !rule.When(m.state, m.data) {
			continue
		}

		next, err := rule.To(m.state, m.previous, m.data)
		if err != nil {
			return false, fmt.Errorf("rule %s from %v: %w", ruleName(rule.Name, i), m.state, err)
		}
		if next == m.state {
			return false, nil
		}

		from := m.state
		m.previous = from
		m.state = next
		m.changes++

		m.log.Debug("state changed",
			zap.String("rule", ruleName(rule.Name, i)),
			zap.Any("from", from),
			zap.Any("to", next),
		)
		if m.onChange != nil {
			m.onChange(from, next)
		}
		return true, nil
	}
	return false, nil
}

func ruleName(name string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("#%d", index)
}

// State 当前状态
func (m *Machine[S, D]) State() S {
	return m.state
}

// Previous 上一次变化前的状态；尚未发生变化时等于初始状态
func (m *Machine[S, D]) Previous() S {
	return m.previous
}

// Data 最近一次 Evaluate 读取的数据快照
func (m *Machine[S, D]) Data() D {
	return m.data
}

// Changes 状态变化的总次数
func (m *Machine[S, D]) Changes() uint64 {
	return m.changes
}

// Reset 回到初始状态
func (m *Machine[S, D]) Reset() {
	m.state = m.initial
	m.previous = m.initial
	m.changes = 0
	var zero D
	m.data = zero
}
