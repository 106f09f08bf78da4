package world

import (
	"errors"
	"fmt"

	"github.com/gonewx/gridworld/pkg/ecs"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/ref"
)

// ErrInvalidDestination 目标或当前坐标无法解析为格子
var ErrInvalidDestination = errors.New("invalid destination")

// CellEntity 占据格子的实体
type CellEntity interface {
	ecs.Entity
	// Setup 在 GameMap 初始化（或实体生成）时调用一次，实体在其中注册钩子
	Setup(h *Hooks)
	// WorldPos 返回实体当前所在的格子坐标
	WorldPos() grid.Coord
	// Move 把实体移动到目标格子
	Move(target grid.Coord) error
}

// Placer 可以把自己放入 / 移出当前格子的实体
// GameMap.Spawn / Despawn 会在实体实现该接口时调用它
type Placer interface {
	Place() error
	Detach() error
}

// Mover 格子实体的移动能力
// 绑定一个网格和一个所有者，是唯一修改格子实体列表的地方：
// 实体出现在格子 C 的列表中，当且仅当它的位置是 C。
type Mover struct {
	grid  *Grid
	owner CellEntity
	pos   *ref.Ref[grid.Coord]
}

// NewMover 为 owner 创建移动能力，pos 是 owner 对外暴露的位置
func NewMover(g *Grid, owner CellEntity, pos *ref.Ref[grid.Coord]) *Mover {
	return &Mover{grid: g, owner: owner, pos: pos}
}

// WorldPos 返回当前位置
func (m *Mover) WorldPos() grid.Coord {
	return m.pos.Get()
}

// Move 把所有者从当前格子移到目标格子
// 位置在最后一步更新；任何一次查找失败都不会修改网格。
func (m *Mover) Move(target grid.Coord) error {
	if m.grid == nil {
		return fmt.Errorf("%w %v: grid not initialized", ErrInvalidDestination, target)
	}

	newCell, ok := m.grid.GetCell(target)
	if !ok || newCell == nil {
		return fmt.Errorf("%w: no cell at %v", ErrInvalidDestination, target)
	}

	current := m.pos.Get()
	oldCell, ok := m.grid.GetCell(current)
	if !ok || oldCell == nil {
		return fmt.Errorf("%w: current position %v has no cell", ErrInvalidDestination, current)
	}

	oldCell.pull(m.owner.ID())
	newCell.push(m.owner)

	m.pos.Set(target)
	return nil
}

// Place 把所有者放入当前位置的格子（已在列表中时不做任何事）
func (m *Mover) Place() error {
	if m.grid == nil {
		return fmt.Errorf("%w: grid not initialized", ErrInvalidDestination)
	}
	current := m.pos.Get()
	cell, ok := m.grid.GetCell(current)
	if !ok || cell == nil {
		return fmt.Errorf("%w: no cell at %v", ErrInvalidDestination, current)
	}
	if cell.IndexOf(m.owner.ID()) < 0 {
		cell.push(m.owner)
	}
	return nil
}

// Detach 把所有者从当前格子的列表中移除
func (m *Mover) Detach() error {
	if m.grid == nil {
		return fmt.Errorf("%w: grid not initialized", ErrInvalidDestination)
	}
	current := m.pos.Get()
	cell, ok := m.grid.GetCell(current)
	if !ok || cell == nil {
		return fmt.Errorf("%w: current position %v has no cell", ErrInvalidDestination, current)
	}
	cell.pull(m.owner.ID())
	return nil
}
