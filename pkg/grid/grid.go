// Package grid 提供以整数坐标寻址的稀疏网格存储，以及按视口提取的矩形片段
//
// # 设计要点
//
//   - 网格不是数组：坐标就是寻址方式，永远不需要扩容
//   - 未填充的坐标等价于"没有格子"，查询返回 (零值, false)，从不 panic
//   - 网格本身不包含任何游戏逻辑，只是纯粹的索引存储
//   - 单线程协作式访问，不加锁
//
// # 片段提取策略
//
// 渲染时每帧只需要可见区域。提供两种等价的提取方式：
//
//   - Materialize: 把窗口内的格子复制到稠密的二维切片中，适合一帧内多次遍历（多图层）
//   - View: 不复制，每次读取都回到底层 map，适合窗口很大但只读几次的场景
package grid

// Strategy 片段提取策略
type Strategy int

const (
	// Materialize 复制窗口内容到稠密行数组
	Materialize Strategy = iota
	// View 延迟读取底层网格
	View
)

// String 实现 fmt.Stringer
func (s Strategy) String() string {
	switch s {
	case Materialize:
		return "materialize"
	case View:
		return "view"
	default:
		return "unknown"
	}
}

// ParseStrategy 从配置字符串解析提取策略，空字符串返回 Materialize
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "", "materialize":
		return Materialize, true
	case "view":
		return View, true
	default:
		return Materialize, false
	}
}

// Option 网格构造选项
type Option func(*options)

type options struct {
	strategy Strategy
	capacity int
}

// WithStrategy 设置 GetSegment 默认使用的提取策略
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithCapacity 预分配格子容量
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// Grid 坐标 → 格子数据的映射
//
// T 通常是指针类型（如 *world.CellData），以便格子数据可以被原地修改。
type Grid[T any] struct {
	cells    map[Coord]T
	strategy Strategy
}

// New 创建一个空网格
func New[T any](opts ...Option) *Grid[T] {
	o := options{strategy: Materialize, capacity: 64}
	for _, opt := range opts {
		opt(&o)
	}
	return &Grid[T]{
		cells:    make(map[Coord]T, o.capacity),
		strategy: o.strategy,
	}
}

// Set 写入指定坐标的格子数据
// 仅用于地图加载阶段填充初始数据；运行期的修改通过格子数据本身完成。
func (g *Grid[T]) Set(pos Coord, cell T) {
	g.cells[pos] = cell
}

// GetCell O(1) 查询指定坐标的格子
// 未填充的坐标返回 (零值, false)
func (g *Grid[T]) GetCell(pos Coord) (T, bool) {
	cell, ok := g.cells[pos]
	return cell, ok
}

// Len 返回已填充的格子数量
func (g *Grid[T]) Len() int {
	return len(g.cells)
}

// Each 遍历所有已填充的格子（顺序不确定）
func (g *Grid[T]) Each(fn func(pos Coord, cell T)) {
	for pos, cell := range g.cells {
		fn(pos, cell)
	}
}

// Strategy 返回默认提取策略
func (g *Grid[T]) Strategy() Strategy {
	return g.strategy
}

// GetSegment 使用默认策略提取覆盖 rect 的片段
func (g *Grid[T]) GetSegment(rect Rect) *Segment[T] {
	return g.SegmentWith(rect, g.strategy)
}

// SegmentWith 使用指定策略提取覆盖 rect 的片段
//
// 片段尺寸恰好等于 rect 的整数跨度（见 Rect.Span），
// 范围内未填充的坐标在片段中读作"缺失"。
func (g *Grid[T]) SegmentWith(rect Rect, strategy Strategy) *Segment[T] {
	from, to := rect.Span()
	seg := &Segment[T]{
		From:   from,
		To:     to,
		width:  to.X - from.X + 1,
		height: to.Y - from.Y + 1,
	}

	if strategy == View {
		seg.source = g
		return seg
	}

	seg.rows = make([][]slot[T], seg.height)
	for row := 0; row < seg.height; row++ {
		line := make([]slot[T], seg.width)
		for col := 0; col < seg.width; col++ {
			pos := Coord{X: from.X + col, Y: from.Y + row, Z: from.Z}
			if cell, ok := g.cells[pos]; ok {
				line[col] = slot[T]{cell: cell, ok: true}
			}
		}
		seg.rows[row] = line
	}
	return seg
}
