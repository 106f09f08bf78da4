package main

import (
	"github.com/gonewx/gridworld/pkg/game"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/scenes"
	"github.com/gonewx/gridworld/pkg/surface"
	"github.com/gonewx/gridworld/pkg/world"
)

// headlessStats 无终端运行的累计统计
type headlessStats struct {
	Frames      int
	Fills       int
	Strokes     int
	EntityHooks int
	PlayerPos   grid.Coord
}

// 无终端模式下循环发送的按键
var headlessScript = []world.Key{
	world.KeyRight, world.KeyRight, world.KeyDown, world.KeyLeft,
	world.KeyLeft, world.KeyUp, world.KeyZoomIn, world.KeyZoomOut,
}

const headlessKeyEvery = 20

// runHeadless 以固定 30fps 推进 frames 帧，每隔若干帧发送一个脚本按键
func runHeadless(sm *game.SceneManager, input *scenes.InputQueue, frames, width, height int) headlessStats {
	rec := surface.NewRecorder(float64(width), float64(height))
	var stats headlessStats
	for i := range frames {
		if i%headlessKeyEvery == 0 {
			input.Key(headlessScript[(i/headlessKeyEvery)%len(headlessScript)])
		}
		sm.Update(1.0 / 30)
		rec.Reset()
		sm.Draw(rec)

		stats.Frames++
		stats.Fills += rec.Count(surface.OpFillRect)
		stats.Strokes += rec.Count(surface.OpStrokeRect)
		if ms, ok := sm.GetCurrentScene().(*scenes.MapScene); ok {
			stats.EntityHooks += ms.GameMap().Stats().EntityHooks
			stats.PlayerPos = ms.Player().WorldPos()
		}
	}
	return stats
}
