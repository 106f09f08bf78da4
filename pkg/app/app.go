// Package app 提供桌面端（ebiten）宿主
//
// App 把 ebiten 的键盘、鼠标输入翻译为 world.InputEvent 写入场景的输入队列，
// 并把屏幕图像包装为 surface.Surface 交给场景绘制。
package app

import (
	"errors"
	"image/color"

	"github.com/gonewx/gridworld/pkg/config"
	"github.com/gonewx/gridworld/pkg/game"
	"github.com/gonewx/gridworld/pkg/scenes"
	"github.com/gonewx/gridworld/pkg/surface/ebitensurface"
	"github.com/gonewx/gridworld/pkg/vec"
	"github.com/gonewx/gridworld/pkg/world"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

type keyBinding struct {
	key   ebiten.Key
	input world.Key
}

// 方向键：按住时持续发送（玩家在行动期间忽略输入），按顺序取第一个
var directionKeys = []keyBinding{
	{ebiten.KeyArrowUp, world.KeyUp},
	{ebiten.KeyW, world.KeyUp},
	{ebiten.KeyArrowDown, world.KeyDown},
	{ebiten.KeyS, world.KeyDown},
	{ebiten.KeyArrowLeft, world.KeyLeft},
	{ebiten.KeyA, world.KeyLeft},
	{ebiten.KeyArrowRight, world.KeyRight},
	{ebiten.KeyD, world.KeyRight},
}

// 其余按键：只在按下的那一帧发送
var pressKeys = []keyBinding{
	{ebiten.KeyEqual, world.KeyZoomIn},
	{ebiten.KeyKPAdd, world.KeyZoomIn},
	{ebiten.KeyMinus, world.KeyZoomOut},
	{ebiten.KeyKPSubtract, world.KeyZoomOut},
	{ebiten.KeySpace, world.KeyAction},
	{ebiten.KeyEnter, world.KeyAction},
}

// Options 应用启动参数
type Options struct {
	Window config.WindowConfig
	// MapPath 当前地图，按 R 重新加载
	MapPath  string
	Scenes   *game.SceneManager
	Input    *scenes.InputQueue
	Settings *game.SettingsManager
	Logger   *zap.Logger
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	input        *scenes.InputQueue
	settings     *game.SettingsManager
	surface      *ebitensurface.Surface
	window       config.WindowConfig
	mapPath      string

	screenW, screenH int
	pointer          *vec.Vec2 // 上一帧窗口内的指针位置（鼠标或触摸），窗口外为 nil

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
	reportedColors           int  // 已报告的无效颜色数量

	closed bool
	log    *zap.Logger
}

// NewApp 创建应用，场景管理器中应已有活动场景
func NewApp(opts Options) (*App, error) {
	if opts.Scenes == nil {
		return nil, errors.New("app: scene manager cannot be nil")
	}
	if opts.Input == nil {
		return nil, errors.New("app: input queue cannot be nil")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		sceneManager: opts.Scenes,
		input:        opts.Input,
		settings:     opts.Settings,
		surface:      ebitensurface.New(nil),
		window:       opts.Window,
		mapPath:      opts.MapPath,
		screenW:      opts.Window.Width,
		screenH:      opts.Window.Height,
		log:          log.Named("app"),
	}, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.window.Width, a.window.Height)
			a.pendingWindowSizeReset = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.Close()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := a.sceneManager.LoadMap(a.mapPath); err != nil {
			a.log.Error("reload failed", zap.Error(err))
		}
	}

	a.pollKeys()
	a.pollPointer()

	a.sceneManager.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

func (a *App) toggleFullscreen() {
	fullscreen := !ebiten.IsFullscreen()
	if !fullscreen {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
	} else {
		ebiten.SetFullscreen(true)
	}
	if a.settings != nil {
		a.settings.SetFullscreen(fullscreen)
	}
}

func (a *App) pollKeys() {
	for _, b := range directionKeys {
		if ebiten.IsKeyPressed(b.key) {
			a.input.Key(b.input)
			break
		}
	}
	for _, b := range pressKeys {
		if inpututil.IsKeyJustPressed(b.key) {
			a.input.Key(b.input)
		}
	}
}

func (a *App) pollPointer() {
	ps := ReadPointer()
	if !ps.Inside(a.screenW, a.screenH) {
		if a.pointer != nil {
			a.pointer = nil
			a.input.Push(world.InputEvent{Kind: world.InputPointerLeave})
		}
		return
	}

	p := vec.NewVec2(float64(ps.X), float64(ps.Y))
	if a.pointer == nil || *a.pointer != p {
		a.pointer = &p
		a.input.Push(world.InputEvent{Kind: world.InputPointerMove, Pointer: p})
	}
	if ps.JustPressed {
		a.input.Push(world.InputEvent{Kind: world.InputPointerDown, Pointer: p})
	}
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(a.surface.Bind(screen))

	if invalid := a.surface.Palette().Invalid(); len(invalid) > a.reportedColors {
		for style, err := range invalid {
			a.log.Warn("invalid color style", zap.String("style", style), zap.Error(err))
		}
		a.reportedColors = len(invalid)
	}
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 逻辑尺寸跟随窗口大小，窗口越大可见的格子越多
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		a.screenW, a.screenH = outsideWidth, outsideHeight
	}
	return a.screenW, a.screenH
}

// Close 保存并关闭当前场景，重复调用无效果
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.sceneManager.Close()
	if a.settings != nil {
		if err := a.settings.Save(); err != nil {
			a.log.Warn("failed to save settings", zap.Error(err))
		}
	}
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}
