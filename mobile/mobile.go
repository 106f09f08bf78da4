//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包，
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
//	# Android
//	cp -r data mobile/ && ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.gonewx.gridworld -o build/android/gridworld.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	cp -r data mobile/ && ebitenmobile bind -target ios -tags mobile -o build/ios/Gridworld.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/gonewx/gridworld/pkg/app"
	"github.com/gonewx/gridworld/pkg/embedded"
	"github.com/gonewx/gridworld/pkg/game"
	"github.com/gonewx/gridworld/pkg/logger"
	"github.com/gonewx/gridworld/pkg/scenes"
)

func init() {
	embedded.Init(dataFS)

	cfg, err := scenes.LoadConfig("")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	zl, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("创建日志失败: %v", err)
	}

	settings := scenes.OpenSettings(cfg, zl)
	input := &scenes.InputQueue{}
	sceneManager := game.NewSceneManager(zl)
	sceneManager.SetSceneFactory(scenes.NewFactory(cfg, settings, input, zl))
	if err := sceneManager.LoadMap(""); err != nil {
		log.Fatalf("加载地图失败: %v", err)
	}

	gameApp, err := app.NewApp(app.Options{
		Window:   cfg.Window,
		Scenes:   sceneManager,
		Input:    input,
		Settings: settings,
		Logger:   zl,
	})
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}

	// 注册游戏到 ebitenmobile
	mobile.SetGame(gameApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
