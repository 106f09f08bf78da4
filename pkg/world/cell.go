// Package world 实现格子世界的运行时核心
//
// 包括格子数据、格子实体及其移动、钩子注册以及 GameMap 的分层渲染管线。
// 所有操作都运行在宿主的单个游戏循环 goroutine 上，不加锁。
package world

import (
	"github.com/gonewx/gridworld/pkg/ecs"
	"github.com/gonewx/gridworld/pkg/grid"
)

// CellData 格子的运行时数据
type CellData struct {
	// Entities 占据该格子的实体，按进入顺序排列
	// 没有实体时为 nil（空列表会被折叠为 nil），读取方应把 nil 和空切片视为相同
	Entities []CellEntity

	Terrain  string
	Revealed bool
	Obstacle bool
}

// Grid 世界网格
type Grid = grid.Grid[*CellData]

// NewGrid 创建空的世界网格
func NewGrid(opts ...grid.Option) *Grid {
	return grid.New[*CellData](opts...)
}

// HasEntities 判断格子上是否有实体，nil 格子返回 false
func (c *CellData) HasEntities() bool {
	return c != nil && len(c.Entities) > 0
}

// IndexOf 返回实体在格子列表中的位置，不存在时返回 -1
func (c *CellData) IndexOf(id ecs.EntityID) int {
	if c == nil {
		return -1
	}
	for i, e := range c.Entities {
		if e.ID() == id {
			return i
		}
	}
	return -1
}

// pull 从列表中移除实体，列表变空时置为 nil
func (c *CellData) pull(id ecs.EntityID) {
	i := c.IndexOf(id)
	if i >= 0 {
		c.Entities = append(c.Entities[:i], c.Entities[i+1:]...)
	}
	if len(c.Entities) == 0 {
		c.Entities = nil
	}
}

func (c *CellData) push(e CellEntity) {
	c.Entities = append(c.Entities, e)
}
