package world

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/gonewx/gridworld/pkg/camera"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/ref"
	"github.com/gonewx/gridworld/pkg/surface"
	"github.com/gonewx/gridworld/pkg/vec"
)

// 20x10 像素的表面、格子边长 10、摄像机位于原点时，
// 可见分段为 x ∈ [-1, 1]、y ∈ [-1, 1] 共 9 个位置。
const (
	testScreenW  = 20
	testScreenH  = 10
	testCellSize = 10.0
)

// mapFixture 测试用地图：3x3 网格缺少 (1,1)，原点已揭示，a、b 两个实体位于原点
type mapFixture struct {
	grid    *Grid
	gameMap *GameMap
	loop    *Loop
	trace   []string
	a, b    *actor
	pointer *ref.Ref[*vec.Vec2]
	camera  *ref.Ref[camera.Camera]
}

func tracer(trace *[]string, name string) RenderCell {
	return func(in CellRenderInput) {
		*trace = append(*trace, fmt.Sprintf("%s@%v", name, in.WorldPos))
	}
}

func newMapFixture(t *testing.T) *mapFixture {
	t.Helper()
	f := &mapFixture{
		grid:    NewGrid(),
		loop:    NewLoop(),
		pointer: ref.New[*vec.Vec2](nil),
		camera:  ref.New(camera.Default()),
	}
	for y := -1; y <= 1; y++ {
		for x := -1; x <= 1; x++ {
			if x == 1 && y == 1 {
				continue
			}
			f.grid.Set(grid.C(x, y, 0), &CellData{Revealed: x == 0 && y == 0})
		}
	}

	f.a = newActor(f.grid, 1, "a", grid.C(0, 0, 0), &f.trace)
	f.b = newActor(f.grid, 2, "b", grid.C(0, 0, 0), &f.trace)
	for _, p := range []*actor{f.a, f.b} {
		if err := p.Place(); err != nil {
			t.Fatalf("Place() failed: %v", err)
		}
	}

	m, err := NewGameMap(MapOptions{
		Grid:             f.grid,
		Camera:           f.camera,
		CellSize:         ref.New(testCellSize),
		PointerScreenPos: f.pointer,
		BgColor:          ref.New("#102030"),
		Below:            []RenderCell{tracer(&f.trace, "below1"), tracer(&f.trace, "below2")},
		BeforeEntities:   tracer(&f.trace, "before"),
		AfterEntities:    tracer(&f.trace, "after"),
		Above:            []RenderCell{tracer(&f.trace, "above")},
	})
	if err != nil {
		t.Fatalf("NewGameMap() failed: %v", err)
	}
	m.Register(f.a)
	m.Register(f.b)
	m.Setup(f.loop)
	f.gameMap = m
	return f
}

func visiblePositions() []grid.Coord {
	var out []grid.Coord
	for y := -1; y <= 1; y++ {
		for x := -1; x <= 1; x++ {
			out = append(out, grid.C(x, y, 0))
		}
	}
	return out
}

func TestNewGameMapRequiresGrid(t *testing.T) {
	if _, err := NewGameMap(MapOptions{}); err == nil {
		t.Error("Expected error without grid")
	}
}

// TestRenderLayerOrder 测试图层顺序：
// below < before-entities < 实体钩子 < after-entities < above，逐格行优先
// 同一实体的多个钩子按注册顺序调用，再轮到下一个实体。
func TestRenderLayerOrder(t *testing.T) {
	f := newMapFixture(t)
	f.gameMap.Entities().Hooks(f.a.ID()).OnCellRender(func(in CellRenderInput) {
		f.trace = append(f.trace, fmt.Sprintf("entity:a#2@%v", in.WorldPos))
	})
	rec := surface.NewRecorder(testScreenW, testScreenH)

	f.loop.Render(rec)

	var want []string
	for _, layer := range []string{"below1", "below2"} {
		for _, pos := range visiblePositions() {
			want = append(want, fmt.Sprintf("%s@%v", layer, pos))
		}
	}
	for _, pos := range visiblePositions() {
		want = append(want, fmt.Sprintf("before@%v", pos))
		if pos == grid.C(0, 0, 0) {
			want = append(want,
				fmt.Sprintf("entity:a@%v", pos),
				fmt.Sprintf("entity:a#2@%v", pos),
				fmt.Sprintf("entity:b@%v", pos))
		}
		want = append(want, fmt.Sprintf("after@%v", pos))
	}
	for _, pos := range visiblePositions() {
		want = append(want, fmt.Sprintf("above@%v", pos))
	}

	if !slices.Equal(f.trace, want) {
		t.Errorf("Render order mismatch\n got: %v\nwant: %v", f.trace, want)
	}
}

// TestRenderClearsBackground 测试第一步是用背景色清屏，且不泄漏绘制状态
func TestRenderClearsBackground(t *testing.T) {
	f := newMapFixture(t)
	rec := surface.NewRecorder(testScreenW, testScreenH)

	f.loop.Render(rec)

	if len(rec.Ops) == 0 {
		t.Fatal("Expected at least one op")
	}
	first := rec.Ops[0]
	if first.Kind != surface.OpFillRect || first.Paint.Fill != "#102030" {
		t.Errorf("First op should clear with background, got %+v", first)
	}
	if first.X != 0 || first.Y != 0 || first.W != testScreenW || first.H != testScreenH {
		t.Errorf("Clear should cover the whole surface, got %+v", first)
	}
	if rec.SaveDepth() != 0 {
		t.Errorf("Save/Restore unbalanced, depth %d", rec.SaveDepth())
	}
	if rec.Count(surface.OpStrokeRect) != 0 {
		t.Error("No highlight expected without a pointer")
	}
}

// TestRenderPassesAbsentCells 测试不存在的格子以 nil 传给图层
func TestRenderPassesAbsentCells(t *testing.T) {
	f := newMapFixture(t)
	var absent []grid.Coord
	m, _ := NewGameMap(MapOptions{
		Grid:     f.grid,
		CellSize: ref.New(testCellSize),
		Below: []RenderCell{func(in CellRenderInput) {
			if in.Cell == nil {
				absent = append(absent, in.WorldPos)
			}
			if in.HalfCellSize != testCellSize/2 {
				t.Errorf("Expected half cell size %v, got %v", testCellSize/2, in.HalfCellSize)
			}
		}},
	})

	m.Render(surface.NewRecorder(testScreenW, testScreenH))

	if len(absent) != 1 || absent[0] != grid.C(1, 1, 0) {
		t.Errorf("Expected only (1,1,0) absent, got %v", absent)
	}
}

// TestRenderScreenPositions 测试传给图层的屏幕坐标与摄像机换算一致
func TestRenderScreenPositions(t *testing.T) {
	f := newMapFixture(t)
	got := map[grid.Coord]vec.Vec2{}
	m, _ := NewGameMap(MapOptions{
		Grid:     f.grid,
		CellSize: ref.New(testCellSize),
		Above: []RenderCell{func(in CellRenderInput) {
			got[in.WorldPos] = in.ScreenPos
		}},
	})

	m.Render(surface.NewRecorder(testScreenW, testScreenH))

	if p := got[grid.C(0, 0, 0)]; p != (vec.Vec2{X: 10, Y: 5}) {
		t.Errorf("Origin should map to screen centre, got %v", p)
	}
	if p := got[grid.C(-1, 0, 0)]; p != (vec.Vec2{X: 0, Y: 5}) {
		t.Errorf("(-1,0) should map to (0,5), got %v", p)
	}
}

// TestPointerHighlight 测试指针高亮的颜色、线宽与位置
func TestPointerHighlight(t *testing.T) {
	tests := []struct {
		name    string
		pointer vec.Vec2
		zoom    float64
		stroke  string
		x, y    float64
		size    float64
	}{
		{"revealed cell", vec.Vec2{X: 10, Y: 5}, 1, HighlightRevealed, 5, 0, 10},
		{"hidden cell", vec.Vec2{X: 16, Y: 5}, 1, HighlightHidden, 15, 0, 10},
		{"absent cell", vec.Vec2{X: 16, Y: 14}, 1, HighlightHidden, 15, 10, 10},
		{"outside segment", vec.Vec2{X: 500, Y: 5}, 1, HighlightHidden, 495, 0, 10},
		{"zoomed", vec.Vec2{X: 10, Y: 5}, 2, HighlightRevealed, 0, -5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMapFixture(t)
			f.camera.Set(camera.Camera{Zoom: tt.zoom})
			p := tt.pointer
			f.pointer.Set(&p)
			rec := surface.NewRecorder(testScreenW, testScreenH)

			f.loop.Render(rec)

			last := rec.Ops[len(rec.Ops)-1]
			if last.Kind != surface.OpStrokeRect {
				t.Fatalf("Highlight should be the last op, got %v", last.Kind)
			}
			if last.Paint.Stroke != tt.stroke {
				t.Errorf("Expected stroke %s, got %s", tt.stroke, last.Paint.Stroke)
			}
			if last.Paint.LineWidth != HighlightLineWidth {
				t.Errorf("Expected line width %v, got %v", HighlightLineWidth, last.Paint.LineWidth)
			}
			if last.X != tt.x || last.Y != tt.y || last.W != tt.size || last.H != tt.size {
				t.Errorf("Expected rect (%v,%v,%v,%v), got (%v,%v,%v,%v)",
					tt.x, tt.y, tt.size, tt.size, last.X, last.Y, last.W, last.H)
			}
			if !f.gameMap.Stats().Highlight {
				t.Error("Stats should report the highlight")
			}
		})
	}
}

// TestRenderDoesNotMutate 测试渲染不修改网格和注册表
func TestRenderDoesNotMutate(t *testing.T) {
	f := newMapFixture(t)
	before := map[grid.Coord]int{}
	f.grid.Each(func(pos grid.Coord, c *CellData) { before[pos] = len(c.Entities) })

	f.loop.Render(surface.NewRecorder(testScreenW, testScreenH))
	f.loop.Render(surface.NewRecorder(testScreenW, testScreenH))

	f.grid.Each(func(pos grid.Coord, c *CellData) {
		if len(c.Entities) != before[pos] {
			t.Errorf("Cell %v entity count changed from %d to %d", pos, before[pos], len(c.Entities))
		}
	})
	if f.grid.Len() != 8 {
		t.Errorf("Grid size changed, got %d", f.grid.Len())
	}
	if f.gameMap.Entities().Len() != 2 {
		t.Errorf("Registry size changed, got %d", f.gameMap.Entities().Len())
	}

	stats := f.gameMap.Stats()
	if stats.Frames != 2 || stats.Cells != 9 || stats.Populated != 8 || stats.EntityHooks != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

// TestRenderSkipsUnregisteredEntities 测试格子中未注册的实体没有钩子可调用
func TestRenderSkipsUnregisteredEntities(t *testing.T) {
	f := newMapFixture(t)
	stray := newActor(f.grid, 9, "stray", grid.C(-1, 0, 0), &f.trace)
	_ = stray.Place()

	f.loop.Render(surface.NewRecorder(testScreenW, testScreenH))

	for _, line := range f.trace {
		if line == fmt.Sprintf("entity:stray@%v", grid.C(-1, 0, 0)) {
			t.Error("Unregistered entity should not be rendered")
		}
	}
}

// TestDispatchInput 测试输入按实体注册顺序分发给全部实体（不按可见性过滤）
func TestDispatchInput(t *testing.T) {
	f := newMapFixture(t)
	far := newActor(f.grid, 3, "far", grid.C(100, 100, 0), &f.trace)
	if err := f.gameMap.Spawn(far); err == nil {
		t.Fatal("Spawn on a missing cell should fail")
	}
	// 不放入格子也能注册并接收输入
	f.gameMap.Register(far)
	far.Setup(f.gameMap.Entities().Hooks(far.ID()))

	f.loop.Input(InputEvent{Kind: InputKey, Key: KeyUp})

	want := []string{"input:a:up", "input:b:up", "input:far:up"}
	if !slices.Equal(f.trace, want) {
		t.Errorf("Expected %v, got %v", want, f.trace)
	}
}

// TestSetupPropagation 测试 Setup 只传播一次
func TestSetupPropagation(t *testing.T) {
	f := newMapFixture(t)
	f.gameMap.Setup(f.loop)

	if f.a.setups != 1 || f.b.setups != 1 {
		t.Errorf("Expected one setup each, got a=%d b=%d", f.a.setups, f.b.setups)
	}
	_, cellRender, _ := f.gameMap.Entities().Hooks(f.a.ID()).Count()
	if cellRender != 1 {
		t.Errorf("Expected 1 cell render hook, got %d", cellRender)
	}
}

// TestSpawnDespawn 测试运行时生成与移除实体
func TestSpawnDespawn(t *testing.T) {
	f := newMapFixture(t)
	c := newActor(f.grid, 3, "c", grid.C(-1, 0, 0), &f.trace)

	if err := f.gameMap.Spawn(c); err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}
	if c.setups != 1 {
		t.Errorf("Spawned entity should be set up, got %d", c.setups)
	}
	if cellAt(t, f.grid, -1, 0).IndexOf(c.ID()) != 0 {
		t.Error("Spawned entity should be placed into its cell")
	}
	if err := f.gameMap.Spawn(c); err == nil {
		t.Error("Spawning twice should fail")
	}

	if err := f.gameMap.Despawn(c); err != nil {
		t.Fatalf("Despawn() failed: %v", err)
	}
	if cellAt(t, f.grid, -1, 0).HasEntities() {
		t.Error("Despawned entity should leave its cell")
	}
	if f.gameMap.Entities().Contains(c.ID()) {
		t.Error("Despawned entity should be unregistered")
	}
	if !slices.Contains(f.trace, "destroy:c") {
		t.Errorf("Despawn should fire destroy hooks, trace %v", f.trace)
	}

	// 重复移除不报错
	if err := f.gameMap.Despawn(c); err != nil {
		t.Errorf("Despawn of unknown entity should be a no-op, got %v", err)
	}
}

// TestDespawnDetachFailure 测试移出格子失败时实体保持注册且不触发销毁钩子
func TestDespawnDetachFailure(t *testing.T) {
	f := newMapFixture(t)
	c := newActor(f.grid, 3, "c", grid.C(-1, 0, 0), &f.trace)
	if err := f.gameMap.Spawn(c); err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}

	// (1,1) 没有格子
	c.pos.Set(grid.C(1, 1, 0))
	err := f.gameMap.Despawn(c)
	if !errors.Is(err, ErrInvalidDestination) {
		t.Fatalf("Expected ErrInvalidDestination, got %v", err)
	}
	if !f.gameMap.Entities().Contains(c.ID()) {
		t.Error("Entity should stay registered when detach fails")
	}
	if _, ok := f.gameMap.Entities().HooksFor(c.ID()); !ok {
		t.Error("Hooks should survive a failed despawn")
	}
	if slices.Contains(f.trace, "destroy:c") {
		t.Error("Destroy hooks should not run when detach fails")
	}

	c.pos.Set(grid.C(-1, 0, 0))
	if err := f.gameMap.Despawn(c); err != nil {
		t.Fatalf("Despawn() failed: %v", err)
	}
	if f.gameMap.Entities().Contains(c.ID()) || cellAt(t, f.grid, -1, 0).HasEntities() {
		t.Error("Retried despawn should remove the entity")
	}
}

// TestDestroy 测试销毁：调用销毁钩子并清空注册表，之后不再渲染
func TestDestroy(t *testing.T) {
	f := newMapFixture(t)

	f.loop.Destroy()
	f.loop.Destroy()

	want := []string{"destroy:a", "destroy:b"}
	if !slices.Equal(f.trace, want) {
		t.Errorf("Expected %v, got %v", want, f.trace)
	}
	if f.gameMap.Entities().Len() != 0 {
		t.Errorf("Registry should be empty, got %d", f.gameMap.Entities().Len())
	}

	rec := surface.NewRecorder(testScreenW, testScreenH)
	f.loop.Render(rec)
	if len(rec.Ops) != 0 {
		t.Error("Destroyed loop should not render")
	}
}
