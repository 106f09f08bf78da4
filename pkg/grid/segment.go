package grid

type slot[T any] struct {
	cell T
	ok   bool
}

// Segment 网格上的只读矩形窗口
// 边界总是整数对齐的；From/To 为闭区间，位于同一深度 From.Z。
// 每当可见区域变化时重新提取，不应长期持有。
type Segment[T any] struct {
	From, To Coord

	width, height int

	rows   [][]slot[T] // Materialize
	source *Grid[T]    // View
}

// Width 列数
func (s *Segment[T]) Width() int {
	return s.width
}

// Height 行数
func (s *Segment[T]) Height() int {
	return s.height
}

// At 按片段内的列/行索引读取格子，越界或缺失返回 (零值, false)
func (s *Segment[T]) At(col, row int) (T, bool) {
	var zero T
	if col < 0 || row < 0 || col >= s.width || row >= s.height {
		return zero, false
	}
	if s.source != nil {
		return s.source.GetCell(Coord{X: s.From.X + col, Y: s.From.Y + row, Z: s.From.Z})
	}
	sl := s.rows[row][col]
	return sl.cell, sl.ok
}

// AtWorld 按世界坐标读取格子（相对 From 做边界检查）
// 深度不一致时同样视为缺失
func (s *Segment[T]) AtWorld(pos Coord) (T, bool) {
	if pos.Z != s.From.Z {
		var zero T
		return zero, false
	}
	return s.At(pos.X-s.From.X, pos.Y-s.From.Y)
}

// Contains 判断世界坐标是否落在片段范围内
func (s *Segment[T]) Contains(pos Coord) bool {
	return pos.Z == s.From.Z &&
		pos.X >= s.From.X && pos.X <= s.To.X &&
		pos.Y >= s.From.Y && pos.Y <= s.To.Y
}

// Each 按行优先顺序遍历片段内的每个坐标（包括缺失的格子）
func (s *Segment[T]) Each(fn func(pos Coord, cell T, ok bool)) {
	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			cell, ok := s.At(col, row)
			fn(Coord{X: s.From.X + col, Y: s.From.Y + row, Z: s.From.Z}, cell, ok)
		}
	}
}
