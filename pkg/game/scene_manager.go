package game

import (
	"errors"
	"fmt"

	"github.com/gonewx/gridworld/pkg/surface"
	"go.uber.org/zap"
)

// ErrNoSceneFactory LoadMap 前没有设置场景工厂
var ErrNoSceneFactory = errors.New("scene factory not set")

// SceneFactory 场景工厂函数类型
// 用于按地图名称创建场景，避免循环依赖
type SceneFactory func(mapName string) (Scene, error)

// SceneManager manages the game's high-level state by controlling which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory // 场景工厂函数，用于创建新场景
	log          *zap.Logger
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager(log *zap.Logger) *SceneManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SceneManager{log: log.Named("scenes")}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo changes the active scene to the provided scene.
// The previous scene is saved and closed first.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene != nil && sm.currentScene != scene {
		sm.exit(sm.currentScene)
	}
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动的场景，没有活动场景时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// LoadMap 通过场景工厂创建并切换到指定地图的场景
// 创建失败时保持当前场景不变。
func (sm *SceneManager) LoadMap(mapName string) error {
	if sm.sceneFactory == nil {
		return ErrNoSceneFactory
	}

	sm.log.Info("loading map", zap.String("map", mapName))
	scene, err := sm.sceneFactory(mapName)
	if err != nil {
		return fmt.Errorf("failed to create scene for map %s: %w", mapName, err)
	}
	if scene == nil {
		return fmt.Errorf("failed to create scene for map %s: factory returned nil", mapName)
	}
	sm.SwitchTo(scene)
	return nil
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
// deltaTime is the time elapsed since the last update in seconds.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided surface.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(s surface.Surface) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(s)
	}
}

// Close 保存并关闭当前场景，之后没有活动场景
func (sm *SceneManager) Close() {
	if sm.currentScene == nil {
		return
	}
	sm.exit(sm.currentScene)
	sm.currentScene = nil
}

func (sm *SceneManager) exit(scene Scene) {
	if s, ok := scene.(Saveable); ok && !s.SaveOnExit() {
		sm.log.Warn("scene failed to save on exit")
	}
	if c, ok := scene.(Closer); ok {
		c.Close()
	}
}
