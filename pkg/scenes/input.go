package scenes

import "github.com/gonewx/gridworld/pkg/world"

// InputSource 宿主输入来源，场景每个 tick 轮询一次
type InputSource interface {
	// Poll 返回自上次调用以来的事件，按发生顺序排列
	Poll() []world.InputEvent
}

// InputQueue 由宿主写入、场景读取的事件队列
// 宿主和场景运行在同一个 goroutine 上，不加锁。
type InputQueue struct {
	events []world.InputEvent
}

// Push 追加事件
func (q *InputQueue) Push(ev world.InputEvent) {
	q.events = append(q.events, ev)
}

// Key 追加一个按键事件
func (q *InputQueue) Key(k world.Key) {
	q.Push(world.InputEvent{Kind: world.InputKey, Key: k})
}

// Poll 取出全部事件
func (q *InputQueue) Poll() []world.InputEvent {
	evs := q.events
	q.events = nil
	return evs
}
