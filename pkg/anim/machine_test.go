package anim

import (
	"errors"
	"testing"
	"time"

	"github.com/gonewx/gridworld/pkg/fsm"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/ref"
)

// animFixture 一组可写的数据源
type animFixture struct {
	src     Sources
	now     *ref.Ref[time.Duration]
	walking *ref.Ref[*WalkData]
	pos     *ref.Ref[grid.Coord]
}

func newAnimFixture() *animFixture {
	f := &animFixture{
		now:     ref.New(time.Duration(0)),
		walking: ref.New[*WalkData](nil),
		pos:     ref.New(grid.C(0, 0, 0)),
	}
	f.src = Sources{
		HP:          ref.New(10),
		MaxHP:       ref.New(10),
		WorldPos:    f.pos,
		CurrentTime: f.now,
		Walking:     f.walking,
	}
	return f
}

// startWalk 从当前位置向 target 行动，持续到 end
func (f *animFixture) startWalk(target grid.Coord, obstacle bool, end time.Duration) {
	f.walking.Set(&WalkData{
		SourcePos:        f.pos.Get(),
		TargetPos:        target,
		TargetIsObstacle: obstacle,
		StartTime:        f.now.Get(),
		EndTime:          end,
	})
}

func evaluate(t *testing.T, m *Machine) State {
	t.Helper()
	if _, err := m.Evaluate(); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	return m.State()
}

// TestIdleWalkIdleRoundTrip 测试 idle-down → walk-right → idle-right
// walk 在下一次求值时立即回到 idle，行动仍在进行时再次进入 walk。
func TestIdleWalkIdleRoundTrip(t *testing.T) {
	f := newAnimFixture()
	m := NewMachine(f.src)

	if m.State() != IdleDown {
		t.Fatalf("Expected initial idle-down, got %v", m.State())
	}

	const end = 200 * time.Millisecond
	f.startWalk(grid.C(1, 0, 0), false, end)
	f.now.Set(50 * time.Millisecond)

	if got := evaluate(t, m); got.String() != "walk-right" {
		t.Fatalf("Expected walk-right, got %v", got)
	}

	f.now.Set(60 * time.Millisecond)
	if got := evaluate(t, m); got.String() != "idle-right" {
		t.Errorf("Expected idle-right on the second tick, got %v", got)
	}
	if m.Previous().String() != "walk-right" {
		t.Errorf("Expected previous walk-right, got %v", m.Previous())
	}

	f.now.Set(70 * time.Millisecond)
	if got := evaluate(t, m); got.String() != "walk-right" {
		t.Errorf("Expected walk-right while the action runs, got %v", got)
	}

	f.now.Set(end)
	if got := evaluate(t, m); got.String() != "idle-right" {
		t.Errorf("Expected idle-right, got %v", got)
	}

	// 已经 idle 且没有行动，状态稳定
	if got := evaluate(t, m); got.String() != "idle-right" {
		t.Errorf("Expected idle-right to be stable, got %v", got)
	}
}

// TestMinePersistsWhileActive 测试 mine 在行动结束前保持不变
func TestMinePersistsWhileActive(t *testing.T) {
	f := newAnimFixture()
	m := NewMachine(f.src)
	const end = 300 * time.Millisecond
	f.startWalk(grid.C(1, 0, 0), true, end)

	for _, now := range []time.Duration{0, 100 * time.Millisecond, end - time.Millisecond} {
		f.now.Set(now)
		if got := evaluate(t, m); got.String() != "mine-right" {
			t.Errorf("At %v: expected mine-right, got %v", now, got)
		}
	}

	f.now.Set(end)
	if got := evaluate(t, m); got.String() != "idle-right" {
		t.Errorf("Expected idle-right once the action ends, got %v", got)
	}
}

// TestMineVersusWalk 测试目标为障碍时进入 mine 而不是 walk
func TestMineVersusWalk(t *testing.T) {
	for _, tt := range []struct {
		obstacle bool
		want     string
	}{
		{false, "walk-up"},
		{true, "mine-up"},
	} {
		f := newAnimFixture()
		m := NewMachine(f.src)
		f.startWalk(grid.C(0, -1, 0), tt.obstacle, time.Second)

		if got := evaluate(t, m); got.String() != tt.want {
			t.Errorf("obstacle=%v: expected %s, got %v", tt.obstacle, tt.want, got)
		}
	}
}

// TestMineFinishesWhenActionCleared 测试行动数据被清除后 mine 回到 idle
func TestMineFinishesWhenActionCleared(t *testing.T) {
	f := newAnimFixture()
	m := NewMachine(f.src)
	f.startWalk(grid.C(-1, 0, 0), true, time.Second)
	evaluate(t, m)

	f.walking.Set(nil)
	if got := evaluate(t, m); got.String() != "idle-left" {
		t.Errorf("Expected idle-left, got %v", got)
	}
}

// TestExpiredActionDoesNotStart 测试结束时间已过的行动不会触发
func TestExpiredActionDoesNotStart(t *testing.T) {
	f := newAnimFixture()
	m := NewMachine(f.src)
	f.startWalk(grid.C(1, 0, 0), false, 100*time.Millisecond)
	f.now.Set(100 * time.Millisecond)

	if got := evaluate(t, m); got != IdleDown {
		t.Errorf("Expected idle-down, got %v", got)
	}
}

// TestFacingTieBreak 测试方向判定：先 x 后 y，相等时为 down
func TestFacingTieBreak(t *testing.T) {
	from := grid.C(5, 5, 0)
	tests := []struct {
		to   grid.Coord
		want Facing
	}{
		{grid.C(4, 9, 0), Left},
		{grid.C(4, 1, 0), Left},
		{grid.C(6, 1, 0), Right},
		{grid.C(5, 4, 0), Up},
		{grid.C(5, 6, 0), Down},
		{grid.C(5, 5, 0), Down},
		{grid.C(5, 5, 3), Down},
	}
	for _, tt := range tests {
		if got := FacingToward(from, tt.to); got != tt.want {
			t.Errorf("FacingToward(%v, %v) = %v, want %v", from, tt.to, got, tt.want)
		}
	}
}

// TestMissingWalkData 测试条件成立但快照缺少行动数据时报错
func TestMissingWalkData(t *testing.T) {
	rules := Rules()
	// 人为构造"条件成立"但快照没有行动数据的情况
	rules[0].When = func(State, Data) bool { return true }
	m := NewMachineWithRules(Sources{}, IdleDown, rules)

	_, err := m.Evaluate()
	if !errors.Is(err, ErrMissingWalkData) || !errors.Is(err, fsm.ErrMissingData) {
		t.Fatalf("Expected ErrMissingWalkData, got %v", err)
	}
	if m.State() != IdleDown {
		t.Errorf("State must not change on failure, got %v", m.State())
	}
}

// TestSnapshotCopiesWalkData 测试快照与数据源隔离
func TestSnapshotCopiesWalkData(t *testing.T) {
	f := newAnimFixture()
	f.startWalk(grid.C(1, 0, 0), false, time.Second)

	d := f.src.Snapshot()
	f.walking.Get().EndTime = 0
	if d.Walking.EndTime != time.Second {
		t.Error("Snapshot should not alias the source walk data")
	}
	if d.HP != 10 || d.MaxHP != 10 {
		t.Errorf("Unexpected HP in snapshot: %d/%d", d.HP, d.MaxHP)
	}
}

func TestParseState(t *testing.T) {
	for _, s := range []string{"idle-down", "walk-left", "mine-up", "walk-right"} {
		st, err := ParseState(s)
		if err != nil {
			t.Errorf("ParseState(%q) error: %v", s, err)
			continue
		}
		if st.String() != s {
			t.Errorf("ParseState(%q).String() = %q", s, st.String())
		}
	}
	for _, s := range []string{"", "idle", "run-left", "walk-north", "walk-"} {
		if _, err := ParseState(s); !errors.Is(err, ErrInvalidState) {
			t.Errorf("ParseState(%q): expected ErrInvalidState, got %v", s, err)
		}
	}
}

func TestWalkProgress(t *testing.T) {
	w := &WalkData{StartTime: 100 * time.Millisecond, EndTime: 300 * time.Millisecond}
	tests := []struct {
		now  time.Duration
		want float64
	}{
		{0, 0},
		{200 * time.Millisecond, 0.5},
		{time.Second, 1},
	}
	for _, tt := range tests {
		if got := w.Progress(tt.now); got != tt.want {
			t.Errorf("Progress(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
	var none *WalkData
	if none.Progress(0) != 1 {
		t.Error("Missing walk should report complete")
	}
}
