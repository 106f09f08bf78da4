package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// MapConfig 地图内容配置（YAML）
// Rows 中的每个字符通过 Legend 映射为一个格子；空格表示该位置没有格子。
// 第 r 行第 c 列的格子位于世界坐标 (Origin.X+c, Origin.Y+r, Depth)。
type MapConfig struct {
	Name          string             `yaml:"name"`
	Depth         int                `yaml:"depth"`
	Origin        Point              `yaml:"origin"`
	Legend        map[string]TileDef `yaml:"legend"`
	Rows          []string           `yaml:"rows"`
	Player        Point              `yaml:"player"`  // 玩家出生点（世界坐标）
	Markers       []MarkerDef        `yaml:"markers"` // 静态标记实体（可选）
	TerrainColors map[string]string  `yaml:"terrainColors"`
	FogColor      string             `yaml:"fogColor"` // 未揭示格子的颜色，默认 "#202020"
}

// Point 地图上的二维坐标（深度由 MapConfig.Depth 决定）
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// TileDef 图例中一个字符代表的格子
type TileDef struct {
	Terrain  string `yaml:"terrain"`  // 地形名称，对应 TerrainColors 的键
	Obstacle bool   `yaml:"obstacle"` // 是否阻挡行走（可被挖掘）
	Revealed bool   `yaml:"revealed"` // 初始是否已揭示
}

// MarkerDef 静态标记
type MarkerDef struct {
	Name  string `yaml:"name"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Color string `yaml:"color"`
}

// LoadMapConfig 从YAML文件加载地图配置
func LoadMapConfig(path string) (*MapConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map config file %s: %w", path, err)
	}
	cfg, err := ParseMapConfig(data)
	if err != nil {
		return nil, fmt.Errorf("map config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseMapConfig 解析YAML地图数据，应用默认值并验证
func ParseMapConfig(data []byte) (*MapConfig, error) {
	var cfg MapConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse map YAML: %w", err)
	}

	applyMapDefaults(&cfg)

	if err := validateMapConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid map config: %w", err)
	}
	return &cfg, nil
}

// Tile 返回坐标处的图例定义；没有格子时 ok 为 false
func (c *MapConfig) Tile(x, y int) (TileDef, bool) {
	row := y - c.Origin.Y
	if row < 0 || row >= len(c.Rows) {
		return TileDef{}, false
	}
	col := x - c.Origin.X
	runes := []rune(c.Rows[row])
	if col < 0 || col >= len(runes) || runes[col] == ' ' {
		return TileDef{}, false
	}
	def, ok := c.Legend[string(runes[col])]
	return def, ok
}

func applyMapDefaults(cfg *MapConfig) {
	if cfg.FogColor == "" {
		cfg.FogColor = "#202020"
	}
	if cfg.TerrainColors == nil {
		cfg.TerrainColors = make(map[string]string)
	}
}

func validateMapConfig(cfg *MapConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("map name is required")
	}
	if len(cfg.Rows) == 0 {
		return fmt.Errorf("at least one row is required")
	}

	for key := range cfg.Legend {
		if utf8.RuneCountInString(key) != 1 {
			return fmt.Errorf("legend key %q must be a single character", key)
		}
		if key == " " {
			return fmt.Errorf("legend key ' ' is reserved for empty space")
		}
	}

	for y, row := range cfg.Rows {
		for x, r := range []rune(row) {
			if r == ' ' {
				continue
			}
			if _, ok := cfg.Legend[string(r)]; !ok {
				return fmt.Errorf("row %d col %d: character %q not in legend", y, x, r)
			}
		}
	}

	tile, ok := cfg.Tile(cfg.Player.X, cfg.Player.Y)
	if !ok {
		return fmt.Errorf("player start (%d,%d) is not on a cell", cfg.Player.X, cfg.Player.Y)
	}
	if tile.Obstacle {
		return fmt.Errorf("player start (%d,%d) is an obstacle", cfg.Player.X, cfg.Player.Y)
	}

	for i, m := range cfg.Markers {
		if _, ok := cfg.Tile(m.X, m.Y); !ok {
			return fmt.Errorf("marker %d (%s): position (%d,%d) is not on a cell", i, m.Name, m.X, m.Y)
		}
	}
	return nil
}
