package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gonewx/gridworld/pkg/utils"
)

// Config 应用配置（TOML）
// 只描述宿主如何运行：窗口、视图、资源路径、玩家参数、日志和本地存储。
// 地图内容和动画规则分别由 MapConfig / MachineDef 描述。
type Config struct {
	Window    WindowConfig    `toml:"window"`
	View      ViewConfig      `toml:"view"`
	Map       MapRef          `toml:"map"`
	Animation AnimationConfig `toml:"animation"`
	Player    PlayerConfig    `toml:"player"`
	Logging   LoggingConfig   `toml:"logging"`
	Storage   StorageConfig   `toml:"storage"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type ViewConfig struct {
	CellSize        float64 `toml:"cell_size"`
	Zoom            float64 `toml:"zoom"`
	MinZoom         float64 `toml:"min_zoom"`
	MaxZoom         float64 `toml:"max_zoom"`
	ZoomStep        float64 `toml:"zoom_step"`
	BgColor         string  `toml:"bg_color"`
	SegmentStrategy string  `toml:"segment_strategy"` // "materialize" or "view"
	FollowFactor    float64 `toml:"follow_factor"`    // 0~1, 1 = snap
}

type MapRef struct {
	Path string `toml:"path"` // YAML map; empty = embedded demo map
}

type AnimationConfig struct {
	Script string `toml:"script"` // YAML machine definition; empty = built-in rules
}

type PlayerConfig struct {
	StepDuration time.Duration `toml:"step_duration"`
	MineDuration time.Duration `toml:"mine_duration"`
	RevealRadius int           `toml:"reveal_radius"`
	MaxHP        int           `toml:"max_hp"`
	WalkEasing   string        `toml:"walk_easing"` // linear, out-cubic, in-out-cubic, out-quad
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type StorageConfig struct {
	AppName string `toml:"app_name"` // gdata application name; empty disables persistence
}

// Load 读取 TOML 文件并覆盖到默认值上
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadBytes 解析 TOML 数据（例如内嵌的默认配置）
func LoadBytes(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults 返回默认配置
func Defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  960,
			Height: 640,
			Title:  "gridworld",
		},
		View: ViewConfig{
			CellSize:        32,
			Zoom:            1,
			MinZoom:         0.25,
			MaxZoom:         4,
			ZoomStep:        0.25,
			BgColor:         "#101418",
			SegmentStrategy: "materialize",
			FollowFactor:    0.2,
		},
		Player: PlayerConfig{
			StepDuration: 180 * time.Millisecond,
			MineDuration: 600 * time.Millisecond,
			RevealRadius: 3,
			MaxHP:        10,
			WalkEasing:   "in-out-cubic",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			AppName: "gridworld",
		},
	}
}

// Validate 检查配置的合法性
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.View.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("view.cell_size must be positive, got %v", c.View.CellSize))
	}
	if c.View.MinZoom <= 0 || c.View.MaxZoom < c.View.MinZoom {
		errs = append(errs, fmt.Errorf("view zoom range [%v, %v] is invalid", c.View.MinZoom, c.View.MaxZoom))
	}
	if c.View.Zoom < c.View.MinZoom || c.View.Zoom > c.View.MaxZoom {
		errs = append(errs, fmt.Errorf("view.zoom %v outside [%v, %v]", c.View.Zoom, c.View.MinZoom, c.View.MaxZoom))
	}
	switch c.View.SegmentStrategy {
	case "", "materialize", "view":
	default:
		errs = append(errs, fmt.Errorf("unknown view.segment_strategy %q", c.View.SegmentStrategy))
	}
	if c.Player.StepDuration <= 0 || c.Player.MineDuration <= 0 {
		errs = append(errs, fmt.Errorf("player durations must be positive"))
	}
	if c.Player.MaxHP <= 0 {
		errs = append(errs, fmt.Errorf("player.max_hp must be positive, got %d", c.Player.MaxHP))
	}
	if c.Player.RevealRadius < 0 {
		errs = append(errs, fmt.Errorf("player.reveal_radius cannot be negative"))
	}
	if _, ok := utils.ParseEasing(c.Player.WalkEasing); !ok {
		errs = append(errs, fmt.Errorf("unknown player.walk_easing %q", c.Player.WalkEasing))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
