package world

import "github.com/gonewx/gridworld/pkg/surface"

// Lifecycle 宿主作用域，GameMap 在 Setup 时向其订阅通知
type Lifecycle interface {
	OnInput(fn func(InputEvent))
	OnRender(fn func(surface.Surface))
	OnDestroy(fn func())
}

// Loop 最简单的 Lifecycle 实现：保存订阅者并由宿主驱动
type Loop struct {
	input     []func(InputEvent)
	render    []func(surface.Surface)
	destroy   []func()
	destroyed bool
}

// NewLoop 创建空的生命周期作用域
func NewLoop() *Loop {
	return &Loop{}
}

func (l *Loop) OnInput(fn func(InputEvent))       { l.input = append(l.input, fn) }
func (l *Loop) OnRender(fn func(surface.Surface)) { l.render = append(l.render, fn) }
func (l *Loop) OnDestroy(fn func())               { l.destroy = append(l.destroy, fn) }

// Input 把事件分发给全部输入订阅者
func (l *Loop) Input(ev InputEvent) {
	if l.destroyed {
		return
	}
	for _, fn := range l.input {
		fn(ev)
	}
}

// Render 在给定表面上运行全部渲染订阅者（每帧一次）
func (l *Loop) Render(s surface.Surface) {
	if l.destroyed {
		return
	}
	for _, fn := range l.render {
		fn(s)
	}
}

// Destroy 运行销毁订阅者并丢弃全部订阅，重复调用无效果
func (l *Loop) Destroy() {
	if l.destroyed {
		return
	}
	l.destroyed = true
	for _, fn := range l.destroy {
		fn()
	}
	l.input, l.render, l.destroy = nil, nil, nil
}

// Destroyed 是否已销毁
func (l *Loop) Destroyed() bool {
	return l.destroyed
}
