// gridterm 在终端中运行格子世界
//
// 用法:
//
//	gridterm [--config path] [--map path] [--cell 3] [--log gridterm.log]
//	gridterm --headless 300     # 不打开终端，渲染 N 帧到记录表面并输出统计
//
// 资源从 --root 目录下的 data/ 读取（默认当前目录），需要在仓库根目录运行或指定 --root。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/gonewx/gridworld/pkg/config"
	"github.com/gonewx/gridworld/pkg/embedded"
	"github.com/gonewx/gridworld/pkg/game"
	"github.com/gonewx/gridworld/pkg/logger"
	"github.com/gonewx/gridworld/pkg/scenes"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: data/config.toml, embedded if absent)")
	mapPath := flag.String("map", "", "path to a map YAML (default: [map] path from config)")
	cellSize := flag.Float64("cell", 3, "terminal cells per world cell")
	logPath := flag.String("log", "gridterm.log", "log file (the terminal is used for drawing)")
	headless := flag.Int("headless", 0, "render N frames without a terminal and print statistics")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	root := flag.String("root", ".", "directory containing data/")
	flag.Parse()

	if err := os.Chdir(*root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to enter %s: %v\n", *root, err)
		os.Exit(1)
	}
	embedded.Init(os.DirFS("."))

	cfg, err := scenes.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	adaptView(cfg, *cellSize)

	var outputs []string
	if *headless == 0 {
		outputs = append(outputs, *logPath)
	}
	log, err := logger.New(cfg.Logging, outputs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	input := &scenes.InputQueue{}
	sceneManager := game.NewSceneManager(log)
	// 终端使用独立的视图设置，避免覆盖桌面端保存的缩放和格子大小
	settings := scenes.OpenSettings(cfg, log)
	sceneManager.SetSceneFactory(scenes.NewFactory(cfg, settings, input, log, scenes.WithoutGridLines()))
	if err := sceneManager.LoadMap(*mapPath); err != nil {
		log.Fatal("failed to load map", zap.Error(err))
	}
	defer sceneManager.Close()

	if *headless > 0 {
		stats := runHeadless(sceneManager, input, *headless, cfg.Window.Width/8, cfg.Window.Height/16)
		log.Info("headless run finished",
			zap.Int("frames", stats.Frames),
			zap.Int("fills", stats.Fills),
			zap.Int("strokes", stats.Strokes),
			zap.Int("entityHooks", stats.EntityHooks),
			zap.Stringer("player", stats.PlayerPos))
		return
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal("failed to create screen", zap.Error(err))
	}
	if err := screen.Init(); err != nil {
		log.Fatal("failed to init screen", zap.Error(err))
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.EnableFocus()
	screen.HideCursor()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	NewHost(screen, sceneManager, input, *mapPath, log).Run(ctx)
}

// adaptView 把视图参数换算到终端字符格
// 缩放只取整数倍，存储名加后缀与桌面端区分。
func adaptView(cfg *config.Config, cellSize float64) {
	if cellSize <= 0 {
		cellSize = 3
	}
	cfg.View.CellSize = cellSize
	cfg.View.Zoom = 1
	cfg.View.MinZoom = 1
	cfg.View.MaxZoom = 4
	cfg.View.ZoomStep = 1
	if cfg.Storage.AppName != "" {
		cfg.Storage.AppName += "-term"
	}
}
