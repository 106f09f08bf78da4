package world

import (
	"fmt"

	"github.com/gonewx/gridworld/pkg/config"
	"github.com/gonewx/gridworld/pkg/grid"
)

// LoadGrid 根据地图配置构建网格
func LoadGrid(cfg *config.MapConfig, opts ...grid.Option) (*Grid, error) {
	g := NewGrid(opts...)
	for r, row := range cfg.Rows {
		for c, ch := range []rune(row) {
			if ch == ' ' {
				continue
			}
			def, ok := cfg.Legend[string(ch)]
			if !ok {
				return nil, fmt.Errorf("map %s: row %d col %d: character %q not in legend", cfg.Name, r, c, ch)
			}
			pos := grid.C(cfg.Origin.X+c, cfg.Origin.Y+r, cfg.Depth)
			g.Set(pos, &CellData{
				Terrain:  def.Terrain,
				Revealed: def.Revealed,
				Obstacle: def.Obstacle,
			})
		}
	}
	return g, nil
}

// MapPos 把地图配置中的二维坐标转换为世界坐标
func MapPos(cfg *config.MapConfig, p config.Point) grid.Coord {
	return grid.C(p.X, p.Y, cfg.Depth)
}
