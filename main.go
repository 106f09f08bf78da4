package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gonewx/gridworld/pkg/app"
	"github.com/gonewx/gridworld/pkg/embedded"
	"github.com/gonewx/gridworld/pkg/game"
	"github.com/gonewx/gridworld/pkg/logger"
	"github.com/gonewx/gridworld/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: data/config.toml, embedded if absent)")
	mapPath := flag.String("map", "", "path to a map YAML (default: [map] path from config)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	embedded.Init(dataFS)

	cfg, err := scenes.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	settings := scenes.OpenSettings(cfg, log)
	input := &scenes.InputQueue{}

	sceneManager := game.NewSceneManager(log)
	sceneManager.SetSceneFactory(scenes.NewFactory(cfg, settings, input, log))
	if err := sceneManager.LoadMap(*mapPath); err != nil {
		log.Fatal("failed to load map", zap.Error(err))
	}

	application, err := app.NewApp(app.Options{
		Window:   cfg.Window,
		MapPath:  *mapPath,
		Scenes:   sceneManager,
		Input:    input,
		Settings: settings,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("failed to create app", zap.Error(err))
	}
	defer application.Close()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(settings.GetSettings().Fullscreen)

	if err := ebiten.RunGame(application); err != nil {
		log.Error("game loop exited with error", zap.Error(err))
	}
}
