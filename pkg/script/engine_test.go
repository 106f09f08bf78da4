package script

import (
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(nil)
	t.Cleanup(e.Close)
	return e
}

func TestEvalBool(t *testing.T) {
	e := newTestEngine(t)
	x, err := e.Compile(`starts_with(state, "idle") and walking`)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	tests := []struct {
		env  Env
		want bool
	}{
		{Env{"state": "idle-down", "walking": true}, true},
		{Env{"state": "idle-down", "walking": false}, false},
		{Env{"state": "walk-left", "walking": true}, false},
		// 未定义的变量为 nil
		{Env{"state": "idle-up"}, false},
	}
	for _, tt := range tests {
		got, err := e.EvalBool(x, tt.env)
		if err != nil {
			t.Errorf("EvalBool(%v) error: %v", tt.env, err)
			continue
		}
		if got != tt.want {
			t.Errorf("EvalBool(%v) = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestEvalString(t *testing.T) {
	e := newTestEngine(t)
	x, err := e.Compile(`"idle-" .. suffix(state)`)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	got, err := e.EvalString(x, Env{"state": "walk-left"})
	if err != nil {
		t.Fatalf("EvalString() failed: %v", err)
	}
	if got != "idle-left" {
		t.Errorf("Expected idle-left, got %s", got)
	}

	num, _ := e.Compile("1 + 1")
	if _, err := e.EvalString(num, nil); err == nil || !strings.Contains(err.Error(), "expected string") {
		t.Errorf("Expected type error, got %v", err)
	}
}

// TestEnvIsolation 测试每次求值使用独立环境，变量不会泄漏到下一次
func TestEnvIsolation(t *testing.T) {
	e := newTestEngine(t)
	x, _ := e.Compile("secret == nil")

	if ok, _ := e.EvalBool(x, Env{"secret": 1}); ok {
		t.Error("Variable should be visible during its own evaluation")
	}
	if ok, _ := e.EvalBool(x, nil); !ok {
		t.Error("Variable leaked into a later evaluation")
	}
}

func TestEnvConversions(t *testing.T) {
	e := newTestEngine(t)
	x, _ := e.Compile("t > 1.4 and t < 1.6 and n == 3 and f == 0.5 and l == 7")

	ok, err := e.EvalBool(x, Env{
		"t": 1500 * time.Millisecond,
		"n": 3,
		"f": 0.5,
		"l": lua.LNumber(7),
	})
	if err != nil || !ok {
		t.Errorf("Expected conversions to hold, got %v %v", ok, err)
	}

	if _, err := e.EvalBool(x, Env{"t": struct{}{}}); err == nil {
		t.Error("Expected error for unsupported type")
	}
}

func TestCompileErrors(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Compile("   "); err == nil {
		t.Error("Expected error for empty expression")
	}
	if _, err := e.Compile("1 +"); err == nil {
		t.Error("Expected syntax error")
	}
}

func TestRuntimeError(t *testing.T) {
	e := newTestEngine(t)
	x, _ := e.Compile("nothing.field")
	if _, err := e.EvalBool(x, nil); err == nil {
		t.Error("Expected runtime error indexing nil")
	}
}

// TestSandbox 测试 os / io 库未打开
func TestSandbox(t *testing.T) {
	e := newTestEngine(t)
	x, _ := e.Compile("os == nil and io == nil and string ~= nil and math ~= nil")
	if ok, err := e.EvalBool(x, nil); err != nil || !ok {
		t.Errorf("Expected only safe libraries, got %v %v", ok, err)
	}
}

func TestRegister(t *testing.T) {
	e := newTestEngine(t)
	e.Register("double", func(L *lua.LState) int {
		L.Push(L.CheckNumber(1) * 2)
		return 1
	})
	x, _ := e.Compile("double(21) == 42")
	if ok, err := e.EvalBool(x, nil); err != nil || !ok {
		t.Errorf("Registered helper not callable: %v %v", ok, err)
	}
}
