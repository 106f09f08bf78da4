package main

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gonewx/gridworld/pkg/game"
	"github.com/gonewx/gridworld/pkg/scenes"
	"github.com/gonewx/gridworld/pkg/surface/termsurface"
	"github.com/gonewx/gridworld/pkg/vec"
	"github.com/gonewx/gridworld/pkg/world"
	"go.uber.org/zap"
)

// Host 终端宿主：把 tcell 事件翻译为 world.InputEvent，并按固定节拍驱动场景
type Host struct {
	screen  tcell.Screen
	surface *termsurface.Surface
	scenes  *game.SceneManager
	input   *scenes.InputQueue
	mapPath string
	tick    time.Duration
	log     *zap.Logger
}

// NewHost 创建终端宿主，screen 必须已经 Init
func NewHost(screen tcell.Screen, sm *game.SceneManager, input *scenes.InputQueue, mapPath string, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		screen:  screen,
		surface: termsurface.New(screen),
		scenes:  sm,
		input:   input,
		mapPath: mapPath,
		tick:    33 * time.Millisecond,
		log:     log.Named("term"),
	}
}

var runeKeys = map[rune]world.Key{
	'w': world.KeyUp,
	'k': world.KeyUp,
	's': world.KeyDown,
	'j': world.KeyDown,
	'a': world.KeyLeft,
	'h': world.KeyLeft,
	'd': world.KeyRight,
	'l': world.KeyRight,
	'+': world.KeyZoomIn,
	'=': world.KeyZoomIn,
	'-': world.KeyZoomOut,
	' ': world.KeyAction,
}

var specialKeys = map[tcell.Key]world.Key{
	tcell.KeyUp:    world.KeyUp,
	tcell.KeyDown:  world.KeyDown,
	tcell.KeyLeft:  world.KeyLeft,
	tcell.KeyRight: world.KeyRight,
	tcell.KeyEnter: world.KeyAction,
}

// translateKey 把终端按键翻译为逻辑按键
func translateKey(ev *tcell.EventKey) (world.Key, bool) {
	if ev.Key() == tcell.KeyRune {
		k, ok := runeKeys[ev.Rune()]
		return k, ok
	}
	k, ok := specialKeys[ev.Key()]
	return k, ok
}

// Handle 处理一个终端事件，返回 true 表示退出
func (h *Host) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return true
		}
		if ev.Key() == tcell.KeyRune && ev.Rune() == 'r' {
			if err := h.scenes.LoadMap(h.mapPath); err != nil {
				h.log.Error("reload failed", zap.Error(err))
			}
			return false
		}
		if k, ok := translateKey(ev); ok {
			h.input.Key(k)
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		p := vec.NewVec2(float64(x), float64(y))
		h.input.Push(world.InputEvent{Kind: world.InputPointerMove, Pointer: p})
		if ev.Buttons()&tcell.Button1 != 0 {
			h.input.Push(world.InputEvent{Kind: world.InputPointerDown, Pointer: p})
		}

	case *tcell.EventFocus:
		if !ev.Focused {
			h.input.Push(world.InputEvent{Kind: world.InputPointerLeave})
		}

	case *tcell.EventResize:
		h.screen.Sync()
	}
	return false
}

// Frame 推进 dt 秒并重绘屏幕
func (h *Host) Frame(dt float64) {
	h.scenes.Update(dt)
	h.screen.Clear()
	h.scenes.Draw(h.surface)
	h.screen.Show()
}

// Run 运行事件循环直到用户退出或 ctx 被取消
func (h *Host) Run(ctx context.Context) {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				// 屏幕已 Fini
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	last := time.Now()
	h.Frame(0)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if h.Handle(ev) {
				return
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			h.Frame(dt)
		}
	}
}
