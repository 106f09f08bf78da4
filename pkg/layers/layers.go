// Package layers 提供 GameMap 常用的图层回调
package layers

import (
	"github.com/gonewx/gridworld/pkg/surface"
	"github.com/gonewx/gridworld/pkg/world"
)

// DefaultTerrainColor 地形在配色表中缺失时使用
const DefaultTerrainColor = "#4a4a4a"

// ObstacleShade 障碍格子相对地形颜色的压暗比例
const ObstacleShade = 0.45

// Terrain 地形图层：已揭示的格子填充地形颜色（障碍压暗），未揭示的填充迷雾颜色
// 坐标处没有格子时不绘制。
func Terrain(colors map[string]string, fog string) world.RenderCell {
	// 压暗结果按地形缓存，避免每帧重复换算
	shaded := make(map[string]string)
	return func(in world.CellRenderInput) {
		if in.Cell == nil {
			return
		}
		style := fog
		if in.Cell.Revealed {
			style = terrainColor(colors, in.Cell.Terrain)
			if in.Cell.Obstacle {
				dark, ok := shaded[style]
				if !ok {
					dark = surface.Darken(style, ObstacleShade)
					shaded[style] = dark
				}
				style = dark
			}
		}
		fillCell(in, style, 1)
	}
}

func terrainColor(colors map[string]string, terrain string) string {
	if c, ok := colors[terrain]; ok && c != "" {
		return c
	}
	return DefaultTerrainColor
}

// Shadow 实体层的前置回调：在有实体的格子底部画一块阴影
func Shadow(color string) world.RenderCell {
	return func(in world.CellRenderInput) {
		if !in.Cell.HasEntities() {
			return
		}
		size := in.ScaledCellSize()
		w, h := size*0.7, size*0.18
		s := in.Surface
		s.Save()
		s.SetFillStyle(color)
		s.FillRect(in.ScreenPos.X-w/2, in.ScreenPos.Y+size*0.22, w, h)
		s.Restore()
	}
}

// GridLines 网格线图层：描边每个存在的格子
func GridLines(color string) world.RenderCell {
	return func(in world.CellRenderInput) {
		if in.Cell == nil {
			return
		}
		size := in.ScaledCellSize()
		s := in.Surface
		s.Save()
		s.SetStrokeStyle(color)
		s.SetLineWidth(1)
		s.StrokeRect(in.ScreenPos.X-size/2, in.ScreenPos.Y-size/2, size, size)
		s.Restore()
	}
}

// fillCell 填充整个格子，scale 为相对格子边长的比例
func fillCell(in world.CellRenderInput, style string, scale float64) {
	size := in.ScaledCellSize() * scale
	s := in.Surface
	s.Save()
	s.SetFillStyle(style)
	s.FillRect(in.ScreenPos.X-size/2, in.ScreenPos.Y-size/2, size, size)
	s.Restore()
}
