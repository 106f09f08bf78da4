package scenes

import (
	"fmt"

	"github.com/gonewx/gridworld/pkg/config"
	"github.com/gonewx/gridworld/pkg/embedded"
	"github.com/gonewx/gridworld/pkg/game"
	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
)

// 内置资源路径
const (
	DefaultConfigPath = "data/config.toml"
	DefaultMapPath    = "data/maps/demo.yaml"
)

// LoadConfig 读取应用配置，path 为空时使用内置默认配置
// 磁盘上的文件优先于嵌入资源。
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	data, err := embedded.Load(path)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Resources 创建一个地图场景所需的内容配置
type Resources struct {
	Map     *config.MapConfig
	Machine *config.MachineDef // 为 nil 时使用内置动画规则
}

// LoadResources 读取地图和动画规则
// mapPath 为空时依次使用配置中的路径和内置演示地图。
func LoadResources(cfg *config.Config, mapPath string) (*Resources, error) {
	if mapPath == "" {
		mapPath = cfg.Map.Path
	}
	if mapPath == "" {
		mapPath = DefaultMapPath
	}

	data, err := embedded.Load(mapPath)
	if err != nil {
		return nil, err
	}
	m, err := config.ParseMapConfig(data)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", mapPath, err)
	}
	res := &Resources{Map: m}

	if script := cfg.Animation.Script; script != "" {
		data, err := embedded.Load(script)
		if err != nil {
			return nil, err
		}
		if res.Machine, err = config.ParseMachineDef(data); err != nil {
			return nil, fmt.Errorf("animation %s: %w", script, err)
		}
	}
	return res, nil
}

// OpenSettings 打开持久化的视图设置
// 存储不可用或未配置 app_name 时进入降级模式（仅内存），不返回错误。
func OpenSettings(cfg *config.Config, log *zap.Logger) *game.SettingsManager {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Storage.AppName == "" {
		return game.NewSettingsManager(nil, log)
	}
	m, err := gdata.Open(gdata.Config{AppName: cfg.Storage.AppName})
	if err != nil {
		log.Warn("settings storage unavailable, view settings will not persist", zap.Error(err))
		return game.NewSettingsManager(nil, log)
	}
	return game.NewSettingsManager(m, log)
}

// FactoryOption 调整工厂创建的场景
type FactoryOption func(*MapSceneOptions)

// WithoutGridLines 创建的场景不绘制网格线
func WithoutGridLines() FactoryOption {
	return func(o *MapSceneOptions) { o.HideGridLines = true }
}

// NewFactory 返回按地图路径创建 MapScene 的场景工厂
func NewFactory(cfg *config.Config, settings *game.SettingsManager, input InputSource, log *zap.Logger, opts ...FactoryOption) game.SceneFactory {
	return func(mapPath string) (game.Scene, error) {
		res, err := LoadResources(cfg, mapPath)
		if err != nil {
			return nil, err
		}
		so := MapSceneOptions{
			Config:   cfg,
			Map:      res.Map,
			Machine:  res.Machine,
			Settings: settings,
			Input:    input,
			Logger:   log,
		}
		for _, opt := range opts {
			opt(&so)
		}
		scene, err := NewMapScene(so)
		if err != nil {
			return nil, err
		}
		return scene, nil
	}
}
